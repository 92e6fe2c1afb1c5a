package service

import (
	"context"
	"time"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const defaultConversationTitle = "New conversation"

type IConversationService interface {
	Create(ctx context.Context, userId string, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error)
	GetAll(ctx context.Context, userId string) ([]*dto.ConversationResponse, error)
	Show(ctx context.Context, userId string, id string) (*dto.ShowConversationResponse, error)
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory) IConversationService {
	return &conversationService{uowFactory: uowFactory}
}

func (c *conversationService) Create(ctx context.Context, userId string, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error) {
	conversation, err := createConversation(ctx, c.uowFactory.NewUnitOfWork(ctx), userId, req.Title, req.PersonaType, req.DocumentIds)
	if err != nil {
		return nil, err
	}
	return &dto.CreateConversationResponse{Id: conversation.Id}, nil
}

func (c *conversationService) GetAll(ctx context.Context, userId string) ([]*dto.ConversationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		r := toConversationResponse(conv)
		res = append(res, &r)
	}
	return res, nil
}

func (c *conversationService) Show(ctx context.Context, userId string, id string) (*dto.ShowConversationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	conversation, err := findOwnedConversation(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationUUID(conversation.Id)},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.ShowConversationResponse{
		ConversationResponse: toConversationResponse(conversation),
		Messages:             make([]dto.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, toMessageResponse(m))
	}
	return res, nil
}

func createConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId, title, personaType string, documentIds []string) (*entity.Conversation, error) {
	if title == "" {
		title = defaultConversationTitle
	}
	if documentIds == nil {
		documentIds = []string{}
	}

	conversation := &entity.Conversation{
		Id:          uuid.New().String(),
		UserId:      userId,
		Title:       title,
		PersonaType: personaType,
		DocumentIds: documentIds,
		CreatedAt:   time.Now(),
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// findOwnedConversation hides conversations of other users behind ErrConversationNotFound.
func findOwnedConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId, id string) (*entity.Conversation, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrConversationNotFound
	}

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: parsed},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

func conversationUUID(id string) uuid.UUID {
	parsed, _ := uuid.Parse(id)
	return parsed
}

func toConversationResponse(c *entity.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		Id:          c.Id,
		Title:       c.Title,
		PersonaType: c.PersonaType,
		DocumentIds: c.DocumentIds,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toMessageResponse(m entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		Id:        m.Id,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
