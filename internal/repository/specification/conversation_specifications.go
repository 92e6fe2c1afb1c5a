package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// OwnedBy matches rows whose user_id is an identity-provider subject.
type OwnedBy struct {
	UserID string
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// EndedSessions keeps sessions that have been finalized.
type EndedSessions struct{}

func (s EndedSessions) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_end IS NOT NULL")
}
