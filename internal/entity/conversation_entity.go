package entity

import (
	"time"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

// Conversation is owned by the durable store; the session layer only reads and copies it.
type Conversation struct {
	Id          string
	UserId      string
	Title       string
	PersonaType string
	DocumentIds []string
	Messages    []Message
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type Message struct {
	Id             string    `json:"id"`
	ConversationId string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
