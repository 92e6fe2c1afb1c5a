package store

import "ai-tutoring-be/internal/entity"

// SessionStore holds the in-memory session and context state of the session manager.
// Implementations hand out and accept copies; callers never share slices with the store.
type SessionStore interface {
	GetSession(id string) (*entity.ConversationSession, bool)
	SetSession(session *entity.ConversationSession)
	// UpdateSession applies fn to the stored session atomically. Reports false when absent.
	UpdateSession(id string, fn func(*entity.ConversationSession)) bool
	DeleteSession(id string)
	Sessions() []*entity.ConversationSession

	GetContext(conversationID string) (*entity.ConversationContext, bool)
	SetContext(conversationID string, ctx *entity.ConversationContext)
	UpdateContext(conversationID string, fn func(*entity.ConversationContext)) bool
	DeleteContext(conversationID string)

	// ConversationIDs lists every conversation that has a context or a session.
	ConversationIDs() []string
	Flush()
}
