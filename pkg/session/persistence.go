package session

import (
	"context"

	"ai-tutoring-be/internal/entity"
)

// Persistence is the durable store behind the session manager.
type Persistence interface {
	// GetConversationByID returns nil, nil when the conversation does not exist.
	GetConversationByID(ctx context.Context, conversationID string) (*entity.Conversation, error)
	// GetSessionsByConversationID returns ended sessions, oldest first.
	GetSessionsByConversationID(ctx context.Context, conversationID string) ([]*entity.ConversationSession, error)
	SaveSession(ctx context.Context, session *entity.ConversationSession) error
	// SaveConversationState stores the running context. session is nil when none is active.
	SaveConversationState(ctx context.Context, conversationID string, conversationContext *entity.ConversationContext, session *entity.ConversationSession) error
}
