package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConversationSession struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ConversationId  uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId          string         `gorm:"type:text;index"`
	SessionStart    time.Time      `gorm:"not null"`
	SessionEnd      *time.Time     `gorm:"index"`
	ContextSnapshot datatypes.JSON `gorm:"type:jsonb"`
	ResumptionCount int            `gorm:"default:0"`
	TotalActiveTime int64          `gorm:"default:0"` // seconds
	UserAgent       string         `gorm:"type:text"`
	DeviceType      string         `gorm:"type:varchar(16)"`
	IsActive        bool           `gorm:"default:false"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (ConversationSession) TableName() string {
	return "conversation_sessions"
}

// ConversationState holds one autosaved row per conversation.
type ConversationState struct {
	ConversationId  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Context         datatypes.JSON `gorm:"type:jsonb;not null"`
	ActiveSessionId *uuid.UUID     `gorm:"type:uuid"`
	TotalActiveTime int64          `gorm:"default:0"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (ConversationState) TableName() string {
	return "conversation_states"
}
