package entity

import (
	"time"
)

const (
	ResponseLengthShort  = "short"
	ResponseLengthMedium = "medium"
	ResponseLengthLong   = "long"

	ExplanationLevelBeginner     = "beginner"
	ExplanationLevelIntermediate = "intermediate"
	ExplanationLevelAdvanced     = "advanced"

	DeviceTypeMobile  = "mobile"
	DeviceTypeTablet  = "tablet"
	DeviceTypeDesktop = "desktop"
	DeviceTypeUnknown = "unknown"
)

type UserPreferences struct {
	ResponseLength    string `json:"response_length"`
	ExplanationLevel  string `json:"explanation_level"`
	PreferredLanguage string `json:"preferred_language"`
}

func DefaultUserPreferences() UserPreferences {
	return UserPreferences{
		ResponseLength:    ResponseLengthMedium,
		ExplanationLevel:  ExplanationLevelIntermediate,
		PreferredLanguage: "en",
	}
}

// ConversationContext is the running state of one conversation.
type ConversationContext struct {
	PersonaType         string          `json:"persona_type"`
	DocumentIds         []string        `json:"document_ids"`
	LastUserIntent      string          `json:"last_user_intent"`
	ConversationSummary string          `json:"conversation_summary"`
	KeyTopics           []string        `json:"key_topics"`
	LastResponse        string          `json:"last_response"`
	ConversationWindow  []Message       `json:"conversation_window"`
	Preferences         UserPreferences `json:"user_preferences"`
}

// Clone returns a deep copy so callers never share slices with the owner.
func (c *ConversationContext) Clone() *ConversationContext {
	if c == nil {
		return nil
	}
	out := *c
	out.DocumentIds = append([]string(nil), c.DocumentIds...)
	out.KeyTopics = append([]string(nil), c.KeyTopics...)
	out.ConversationWindow = append([]Message(nil), c.ConversationWindow...)
	return &out
}

type ClientMetadata struct {
	UserAgent  string `json:"user_agent"`
	DeviceType string `json:"device_type"`
}

type ConversationSession struct {
	Id              string              `json:"id"`
	ConversationId  string              `json:"conversation_id"`
	UserId          string              `json:"user_id"`
	SessionStart    time.Time           `json:"session_start"`
	SessionEnd      *time.Time          `json:"session_end,omitempty"`
	ContextSnapshot ConversationContext `json:"context_snapshot"`
	ResumptionCount int                 `json:"resumption_count"`
	TotalActiveTime int64               `json:"total_active_time"` // seconds
	ClientMetadata  ClientMetadata      `json:"client_metadata"`
	IsActive        bool                `json:"is_active"`
}

func (s *ConversationSession) Clone() *ConversationSession {
	if s == nil {
		return nil
	}
	out := *s
	if s.SessionEnd != nil {
		end := *s.SessionEnd
		out.SessionEnd = &end
	}
	out.ContextSnapshot = *s.ContextSnapshot.Clone()
	return &out
}

type SessionInfo struct {
	PreviousSessions             int       `json:"previous_sessions"`
	LastActiveAt                 time.Time `json:"last_active_at"`
	EstimatedContinuationMinutes int       `json:"estimated_continuation_minutes"`
}

// SessionRestoreData is the read-only bundle handed back by a resume.
type SessionRestoreData struct {
	Conversation        *Conversation
	Context             *ConversationContext
	Session             *ConversationSession
	ResumeFromMessageId string
	SessionInfo         SessionInfo
}

// ConversationState is the last autosaved running state of a conversation.
type ConversationState struct {
	ConversationId  string              `json:"conversation_id"`
	Context         ConversationContext `json:"context"`
	ActiveSessionId string              `json:"active_session_id,omitempty"`
	TotalActiveTime int64               `json:"total_active_time"`
	SavedAt         time.Time           `json:"saved_at"`
}
