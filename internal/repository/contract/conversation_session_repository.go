package contract

import (
	"context"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/specification"
)

type ConversationSessionRepository interface {
	// Save inserts or replaces the session row.
	Save(ctx context.Context, session *entity.ConversationSession) error
	// SaveOpen upserts the session but leaves an already ended row untouched.
	SaveOpen(ctx context.Context, session *entity.ConversationSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ConversationStateRepository interface {
	Upsert(ctx context.Context, state *entity.ConversationState) error
	FindByConversationId(ctx context.Context, conversationId string) (*entity.ConversationState, error)
}
