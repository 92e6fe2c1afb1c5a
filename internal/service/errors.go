package service

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrContextNotFound      = errors.New("no context for conversation")
	ErrStateNotFound        = errors.New("no saved state for conversation")
	ErrDocumentNotFound     = errors.New("document not found")
	// ErrDocumentRejected wraps the processor's validation or parse message.
	ErrDocumentRejected = errors.New("document rejected")
)
