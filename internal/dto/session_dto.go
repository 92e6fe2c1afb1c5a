package dto

import (
	"time"

	"ai-tutoring-be/internal/entity"
)

type StartSessionRequest struct {
	// ConversationId is optional; a new conversation is created when empty.
	ConversationId string   `json:"conversation_id" validate:"omitempty,uuid"`
	Title          string   `json:"title" validate:"max=200"`
	PersonaType    string   `json:"persona_type" validate:"required,max=64"`
	DocumentIds    []string `json:"document_ids" validate:"omitempty,dive,uuid"`
}

type SessionResponse struct {
	Id              string                      `json:"id"`
	ConversationId  string                      `json:"conversation_id"`
	SessionStart    time.Time                   `json:"session_start"`
	SessionEnd      *time.Time                  `json:"session_end,omitempty"`
	ResumptionCount int                         `json:"resumption_count"`
	TotalActiveTime int64                       `json:"total_active_time"`
	DeviceType      string                      `json:"device_type"`
	IsActive        bool                        `json:"is_active"`
	Context         *entity.ConversationContext `json:"context,omitempty"`
}

type ResumeSessionResponse struct {
	Conversation        ConversationResponse        `json:"conversation"`
	Session             SessionResponse             `json:"session"`
	Context             *entity.ConversationContext `json:"context"`
	ResumeFromMessageId string                      `json:"resume_from_message_id"`
	SessionInfo         entity.SessionInfo          `json:"session_info"`
}

type UpdateContextRequest struct {
	PersonaType         *string                 `json:"persona_type" validate:"omitempty,max=64"`
	DocumentIds         []string                `json:"document_ids" validate:"omitempty,dive,uuid"`
	LastUserIntent      *string                 `json:"last_user_intent"`
	ConversationSummary *string                 `json:"conversation_summary"`
	KeyTopics           []string                `json:"key_topics"`
	LastResponse        *string                 `json:"last_response"`
	Preferences         *entity.UserPreferences `json:"user_preferences"`
}

type AddMessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

type AddMessageResponse struct {
	Message MessageResponse             `json:"message"`
	Context *entity.ConversationContext `json:"context"`
}

type SnapshotResponse struct {
	Context   *entity.ConversationContext `json:"context"`
	Session   *SessionResponse            `json:"session,omitempty"`
	Timestamp time.Time                   `json:"timestamp"`
}

type RestoreSnapshotRequest struct {
	Context   *entity.ConversationContext `json:"context" validate:"required"`
	Session   *entity.ConversationSession `json:"session"`
	Timestamp time.Time                   `json:"timestamp"`
}
