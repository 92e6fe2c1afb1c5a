package service

import (
	"context"
	"fmt"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/pkg/session"

	"github.com/google/uuid"
)

const persistenceModule = "SessionPersistence"

var _ session.Persistence = (*SessionPersistence)(nil)

// StateCache is the hot copy of autosaved conversation state (Redis in production).
type StateCache interface {
	Set(ctx context.Context, state *entity.ConversationState) error
	Get(ctx context.Context, conversationId string) (*entity.ConversationState, error)
}

type SessionPersistence struct {
	uowFactory unitofwork.RepositoryFactory
	cache      StateCache
	logger     logger.ILogger
}

// NewSessionPersistence backs the session manager with postgres. cache may be nil.
func NewSessionPersistence(uowFactory unitofwork.RepositoryFactory, cache StateCache, log logger.ILogger) *SessionPersistence {
	return &SessionPersistence{
		uowFactory: uowFactory,
		cache:      cache,
		logger:     log,
	}
}

func (p *SessionPersistence) GetConversationByID(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	id, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, nil
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, nil
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	conversation.Messages = messages
	return conversation, nil
}

func (p *SessionPersistence) GetSessionsByConversationID(ctx context.Context, conversationID string) ([]*entity.ConversationSession, error) {
	id, err := uuid.Parse(conversationID)
	if err != nil {
		return []*entity.ConversationSession{}, nil
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	return uow.ConversationSessionRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: id},
		specification.EndedSessions{},
		specification.OrderBy{Field: "session_start"},
	)
}

func (p *SessionPersistence) SaveSession(ctx context.Context, s *entity.ConversationSession) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	return uow.ConversationSessionRepository().Save(ctx, s)
}

// SaveConversationState writes the active session and the state row in one transaction,
// then refreshes the cache. A session row that has already ended is left as is.
// A cache failure does not fail the save.
func (p *SessionPersistence) SaveConversationState(ctx context.Context, conversationID string, conversationContext *entity.ConversationContext, s *entity.ConversationSession) error {
	if conversationContext == nil {
		return fmt.Errorf("save state %s: nil context", conversationID)
	}

	state := &entity.ConversationState{
		ConversationId: conversationID,
		Context:        *conversationContext.Clone(),
		SavedAt:        time.Now(),
	}
	if s != nil {
		state.ActiveSessionId = s.Id
		state.TotalActiveTime = s.TotalActiveTime
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if s != nil {
		if err := uow.ConversationSessionRepository().SaveOpen(ctx, s); err != nil {
			return fmt.Errorf("save active session: %w", err)
		}
	}
	if err := uow.ConversationStateRepository().Upsert(ctx, state); err != nil {
		return fmt.Errorf("upsert conversation state: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, state); err != nil {
			p.logger.Warn(persistenceModule, "Failed to cache conversation state", map[string]interface{}{
				"conversation_id": conversationID,
				"error":           err.Error(),
			})
		}
	}
	return nil
}

// LoadState reads the cache first and falls back to the database.
func (p *SessionPersistence) LoadState(ctx context.Context, conversationID string) (*entity.ConversationState, error) {
	if p.cache != nil {
		state, err := p.cache.Get(ctx, conversationID)
		if err != nil {
			p.logger.Warn(persistenceModule, "Conversation state cache read failed", map[string]interface{}{
				"conversation_id": conversationID,
				"error":           err.Error(),
			})
		} else if state != nil {
			return state, nil
		}
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	return uow.ConversationStateRepository().FindByConversationId(ctx, conversationID)
}
