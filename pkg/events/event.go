package events

import "time"

const (
	TypeDocumentProcessed = "DOCUMENT_PROCESSED"
	TypeSessionStarted    = "SESSION_STARTED"
	TypeSessionEnded      = "SESSION_ENDED"
)

// Event defines the contract for all domain events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_STARTED").
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewDocumentProcessed(documentId, userId, fileType string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentProcessed,
		Data: map[string]interface{}{
			"document_id": documentId,
			"user_id":     userId,
			"file_type":   fileType,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionStarted(sessionId, conversationId, userId string, resumptionCount int) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"session_id":       sessionId,
			"conversation_id":  conversationId,
			"user_id":          userId,
			"resumption_count": resumptionCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionEnded(sessionId, conversationId string, totalActiveSeconds int64) Event {
	return BaseEvent{
		Type: TypeSessionEnded,
		Data: map[string]interface{}{
			"session_id":        sessionId,
			"conversation_id":   conversationId,
			"total_active_time": totalActiveSeconds,
		},
		OccurredAt: time.Now(),
	}
}
