package service

import (
	"context"
	"time"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/pkg/events"
	"ai-tutoring-be/pkg/session"

	"github.com/google/uuid"
)

const sessionModule = "SessionService"

// StateLoader reads the last autosaved state of a conversation.
type StateLoader interface {
	LoadState(ctx context.Context, conversationId string) (*entity.ConversationState, error)
}

type ISessionService interface {
	Start(ctx context.Context, userId string, meta entity.ClientMetadata, req *dto.StartSessionRequest) (*dto.SessionResponse, error)
	Resume(ctx context.Context, userId string, conversationId string, meta entity.ClientMetadata) (*dto.ResumeSessionResponse, error)
	End(ctx context.Context, userId string, sessionId string) (*dto.SessionResponse, error)
	GetActive(ctx context.Context, userId string, conversationId string) (*dto.SessionResponse, error)
	UpdateContext(ctx context.Context, userId string, conversationId string, req *dto.UpdateContextRequest) (*entity.ConversationContext, error)
	AddMessage(ctx context.Context, userId string, conversationId string, req *dto.AddMessageRequest) (*dto.AddMessageResponse, error)
	Snapshot(ctx context.Context, userId string, conversationId string) (*dto.SnapshotResponse, error)
	Restore(ctx context.Context, userId string, conversationId string, req *dto.RestoreSnapshotRequest) (*dto.SnapshotResponse, error)
	State(ctx context.Context, userId string, conversationId string) (*entity.ConversationState, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	manager        *session.Manager
	states         StateLoader
	eventPublisher EventPublisher
	logger         logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	manager *session.Manager,
	states StateLoader,
	eventPublisher EventPublisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		manager:        manager,
		states:         states,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *sessionService) Start(ctx context.Context, userId string, meta entity.ClientMetadata, req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var (
		conversation *entity.Conversation
		err          error
	)
	if req.ConversationId == "" {
		conversation, err = createConversation(ctx, uow, userId, req.Title, req.PersonaType, req.DocumentIds)
	} else {
		conversation, err = findOwnedConversation(ctx, uow, userId, req.ConversationId)
	}
	if err != nil {
		return nil, err
	}

	documentIds := req.DocumentIds
	if len(documentIds) == 0 {
		documentIds = conversation.DocumentIds
	}

	started, err := s.manager.StartSession(ctx, session.StartSessionParams{
		ConversationId: conversation.Id,
		UserId:         userId,
		PersonaType:    req.PersonaType,
		DocumentIds:    documentIds,
		ClientMetadata: meta,
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, sessionModule,
		events.NewSessionStarted(started.Id, started.ConversationId, userId, started.ResumptionCount))

	res := toSessionResponse(started, s.manager.GetContext(conversation.Id))
	return &res, nil
}

func (s *sessionService) Resume(ctx context.Context, userId string, conversationId string, meta entity.ClientMetadata) (*dto.ResumeSessionResponse, error) {
	if _, err := findOwnedConversation(ctx, s.uowFactory.NewUnitOfWork(ctx), userId, conversationId); err != nil {
		return nil, err
	}

	data, err := s.manager.ResumeSession(ctx, conversationId, meta)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrConversationNotFound
	}

	publishEvent(ctx, s.eventPublisher, s.logger, sessionModule,
		events.NewSessionStarted(data.Session.Id, conversationId, userId, data.Session.ResumptionCount))

	return &dto.ResumeSessionResponse{
		Conversation:        toConversationResponse(data.Conversation),
		Session:             toSessionResponse(data.Session, nil),
		Context:             data.Context,
		ResumeFromMessageId: data.ResumeFromMessageId,
		SessionInfo:         data.SessionInfo,
	}, nil
}

func (s *sessionService) End(ctx context.Context, userId string, sessionId string) (*dto.SessionResponse, error) {
	current := s.manager.GetSession(sessionId)
	if current == nil || current.UserId != userId {
		return nil, ErrSessionNotFound
	}

	ended, err := s.manager.EndSession(ctx, sessionId)
	if ended == nil && err == nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, sessionModule,
		events.NewSessionEnded(ended.Id, ended.ConversationId, ended.TotalActiveTime))

	res := toSessionResponse(ended, nil)
	return &res, nil
}

func (s *sessionService) GetActive(ctx context.Context, userId string, conversationId string) (*dto.SessionResponse, error) {
	if _, err := findOwnedConversation(ctx, s.uowFactory.NewUnitOfWork(ctx), userId, conversationId); err != nil {
		return nil, err
	}

	active := s.manager.GetActiveSession(conversationId)
	if active == nil {
		return nil, ErrSessionNotFound
	}
	res := toSessionResponse(active, s.manager.GetContext(conversationId))
	return &res, nil
}

func (s *sessionService) UpdateContext(ctx context.Context, userId string, conversationId string, req *dto.UpdateContextRequest) (*entity.ConversationContext, error) {
	if _, err := findOwnedConversation(ctx, s.uowFactory.NewUnitOfWork(ctx), userId, conversationId); err != nil {
		return nil, err
	}

	updated := s.manager.UpdateContext(conversationId, session.ContextUpdate{
		PersonaType:         req.PersonaType,
		DocumentIds:         req.DocumentIds,
		LastUserIntent:      req.LastUserIntent,
		ConversationSummary: req.ConversationSummary,
		KeyTopics:           req.KeyTopics,
		LastResponse:        req.LastResponse,
		Preferences:         req.Preferences,
	})
	if updated == nil {
		return nil, ErrContextNotFound
	}
	return updated, nil
}

// AddMessage stores the message first; the in-memory context is only updated once it is durable.
func (s *sessionService) AddMessage(ctx context.Context, userId string, conversationId string, req *dto.AddMessageRequest) (*dto.AddMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := findOwnedConversation(ctx, uow, userId, conversationId); err != nil {
		return nil, err
	}

	msg := entity.Message{
		Id:             uuid.New().String(),
		ConversationId: conversationId,
		Role:           req.Role,
		Content:        req.Content,
		CreatedAt:      time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &msg); err != nil {
		return nil, err
	}
	if err := uow.ConversationRepository().Touch(ctx, conversationId); err != nil {
		s.logger.Warn(sessionModule, "Failed to touch conversation", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
	}

	return &dto.AddMessageResponse{
		Message: toMessageResponse(msg),
		Context: s.manager.AddMessageToContext(conversationId, msg),
	}, nil
}

func (s *sessionService) Snapshot(ctx context.Context, userId string, conversationId string) (*dto.SnapshotResponse, error) {
	if _, err := findOwnedConversation(ctx, s.uowFactory.NewUnitOfWork(ctx), userId, conversationId); err != nil {
		return nil, err
	}

	snapshot := s.manager.CreateSnapshot(conversationId)
	if snapshot == nil {
		return nil, ErrContextNotFound
	}
	return toSnapshotResponse(snapshot), nil
}

func (s *sessionService) Restore(ctx context.Context, userId string, conversationId string, req *dto.RestoreSnapshotRequest) (*dto.SnapshotResponse, error) {
	if _, err := findOwnedConversation(ctx, s.uowFactory.NewUnitOfWork(ctx), userId, conversationId); err != nil {
		return nil, err
	}

	var restored *entity.ConversationSession
	if req.Session != nil {
		restored = req.Session.Clone()
		restored.UserId = userId
		// Only the conversation's own live session keeps its id.
		if held := s.manager.GetSession(restored.Id); held == nil || held.ConversationId != conversationId {
			restored.Id = uuid.New().String()
		}
	}

	err := s.manager.RestoreFromSnapshot(conversationId, session.Snapshot{
		Context:   req.Context,
		Session:   restored,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		return nil, err
	}

	return toSnapshotResponse(s.manager.CreateSnapshot(conversationId)), nil
}

func (s *sessionService) State(ctx context.Context, userId string, conversationId string) (*entity.ConversationState, error) {
	if _, err := findOwnedConversation(ctx, s.uowFactory.NewUnitOfWork(ctx), userId, conversationId); err != nil {
		return nil, err
	}

	state, err := s.states.LoadState(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrStateNotFound
	}
	return state, nil
}

func toSessionResponse(s *entity.ConversationSession, conversationContext *entity.ConversationContext) dto.SessionResponse {
	return dto.SessionResponse{
		Id:              s.Id,
		ConversationId:  s.ConversationId,
		SessionStart:    s.SessionStart,
		SessionEnd:      s.SessionEnd,
		ResumptionCount: s.ResumptionCount,
		TotalActiveTime: s.TotalActiveTime,
		DeviceType:      s.ClientMetadata.DeviceType,
		IsActive:        s.IsActive,
		Context:         conversationContext,
	}
}

func toSnapshotResponse(snapshot *session.Snapshot) *dto.SnapshotResponse {
	res := &dto.SnapshotResponse{
		Context:   snapshot.Context,
		Timestamp: snapshot.Timestamp,
	}
	if snapshot.Session != nil {
		sessionRes := toSessionResponse(snapshot.Session, nil)
		res.Session = &sessionRes
	}
	return res
}
