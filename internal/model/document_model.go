package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string         `gorm:"type:text;not null;index"`
	FileName  string         `gorm:"type:text;not null"`
	FileType  string         `gorm:"type:varchar(8);not null"`
	FileSize  int64          `gorm:"not null"`
	Status    string         `gorm:"type:varchar(16);not null;default:'indexing';index"`
	Summary   string         `gorm:"type:text"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentChunk struct {
	Id          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId  uuid.UUID        `gorm:"type:uuid;not null;index"`
	ChunkIndex  int              `gorm:"not null"` // 0-based, gapless per document
	ContentType string           `gorm:"type:varchar(16);not null;default:'chunk'"`
	Content     string           `gorm:"type:text;not null"`
	Confidence  float64          `gorm:"default:1"`
	Embedding   *pgvector.Vector `gorm:"type:vector(768)"` // nil until embedded
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
