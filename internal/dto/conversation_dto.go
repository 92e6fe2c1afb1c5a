package dto

import (
	"time"
)

type CreateConversationRequest struct {
	Title       string   `json:"title" validate:"max=200"`
	PersonaType string   `json:"persona_type" validate:"max=64"`
	DocumentIds []string `json:"document_ids" validate:"omitempty,dive,uuid"`
}

type CreateConversationResponse struct {
	Id string `json:"id"`
}

type ConversationResponse struct {
	Id          string     `json:"id"`
	Title       string     `json:"title"`
	PersonaType string     `json:"persona_type"`
	DocumentIds []string   `json:"document_ids"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type MessageResponse struct {
	Id        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ShowConversationResponse struct {
	ConversationResponse
	Messages []MessageResponse `json:"messages"`
}
