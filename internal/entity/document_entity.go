package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentStatusIndexing = "indexing"
	DocumentStatusReady    = "ready"
	DocumentStatusFailed   = "failed"

	ChunkContentType = "chunk"
)

// DocumentMetadata is produced once per successful parse.
type DocumentMetadata struct {
	OriginalName     string    `json:"original_name"`
	WordCount        int       `json:"word_count"`
	Language         string    `json:"language"`
	ExtractionMethod string    `json:"extraction_method"`
	PageCount        *int      `json:"page_count,omitempty"`
	Encoding         string    `json:"encoding,omitempty"`
	ProcessedAt      time.Time `json:"processed_at"`
}

type ChunkMetadata struct {
	Confidence float64 `json:"confidence"`
}

// DocumentContentChunk is one bounded slice of extracted text. DocumentId stays
// empty until the owning document has been persisted.
type DocumentContentChunk struct {
	Id          string        `json:"id"`
	DocumentId  string        `json:"document_id"`
	ContentType string        `json:"content_type"`
	Content     string        `json:"content"`
	ChunkIndex  int           `json:"chunk_index"`
	Metadata    ChunkMetadata `json:"metadata"`
}

type ParsedDocument struct {
	Text     string                 `json:"text"`
	Metadata DocumentMetadata       `json:"metadata"`
	Chunks   []DocumentContentChunk `json:"chunks"`
}

// ProcessingResult carries either Document (Success) or Error, never both.
type ProcessingResult struct {
	Success  bool            `json:"success"`
	Document *ParsedDocument `json:"document,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type FileInfo struct {
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	Type          string `json:"type"`
	FormattedSize string `json:"formatted_size"`
}

type UploadValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	FileInfo FileInfo `json:"file_info"`
}

// Document is the persisted record of an uploaded file.
type Document struct {
	Id        uuid.UUID
	UserId    string
	FileName  string
	FileType  string
	FileSize  int64
	Status    string
	Summary   string
	Metadata  DocumentMetadata
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type DocumentChunk struct {
	Id          uuid.UUID
	DocumentId  uuid.UUID
	ChunkIndex  int
	ContentType string
	Content     string
	Confidence  float64
	Embedding   []float32
	CreatedAt   time.Time
}
