package dto

import (
	"time"

	"ai-tutoring-be/internal/entity"

	"github.com/google/uuid"
)

type ValidateDocumentResponse struct {
	Validation              entity.UploadValidationResult `json:"validation"`
	EstimatedProcessingTime int64                         `json:"estimated_processing_ms"`
}

type UploadDocumentResponse struct {
	Id         uuid.UUID               `json:"id"`
	FileName   string                  `json:"file_name"`
	FileType   string                  `json:"file_type"`
	Status     string                  `json:"status"`
	Summary    string                  `json:"summary"`
	Metadata   entity.DocumentMetadata `json:"metadata"`
	ChunkCount int                     `json:"chunk_count"`
}

type ShowDocumentResponse struct {
	Id        uuid.UUID               `json:"id"`
	FileName  string                  `json:"file_name"`
	FileType  string                  `json:"file_type"`
	FileSize  int64                   `json:"file_size"`
	Status    string                  `json:"status"`
	Summary   string                  `json:"summary"`
	Metadata  entity.DocumentMetadata `json:"metadata"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt *time.Time              `json:"updated_at"`
}

type DocumentChunkResponse struct {
	Id           uuid.UUID `json:"id"`
	ChunkIndex   int       `json:"chunk_index"`
	ContentType  string    `json:"content_type"`
	Content      string    `json:"content"`
	Confidence   float64   `json:"confidence"`
	HasEmbedding bool      `json:"has_embedding"`
}

// IndexDocumentChunksMessage is the chunk-index job payload.
type IndexDocumentChunksMessage struct {
	DocumentId uuid.UUID                     `json:"document_id"`
	UserId     string                        `json:"user_id"`
	Chunks     []entity.DocumentContentChunk `json:"chunks"`
}
