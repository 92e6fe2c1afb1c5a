package mapper

import (
	"encoding/json"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var meta entity.DocumentMetadata
	if len(d.Metadata) > 0 {
		// Metadata is written by ToModel only; a decode failure leaves it zero.
		_ = json.Unmarshal(d.Metadata, &meta)
	}

	return &entity.Document{
		Id:        d.Id,
		UserId:    d.UserId,
		FileName:  d.FileName,
		FileType:  d.FileType,
		FileSize:  d.FileSize,
		Status:    d.Status,
		Summary:   d.Summary,
		Metadata:  meta,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	meta, _ := json.Marshal(d.Metadata)

	return &model.Document{
		Id:        d.Id,
		UserId:    d.UserId,
		FileName:  d.FileName,
		FileType:  d.FileType,
		FileSize:  d.FileSize,
		Status:    d.Status,
		Summary:   d.Summary,
		Metadata:  datatypes.JSON(meta),
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *DocumentMapper) ChunkToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	var embedding []float32
	if c.Embedding != nil {
		embedding = c.Embedding.Slice()
	}

	return &entity.DocumentChunk{
		Id:          c.Id,
		DocumentId:  c.DocumentId,
		ChunkIndex:  c.ChunkIndex,
		ContentType: c.ContentType,
		Content:     c.Content,
		Confidence:  c.Confidence,
		Embedding:   embedding,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *DocumentMapper) ChunkToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}

	return &model.DocumentChunk{
		Id:          c.Id,
		DocumentId:  c.DocumentId,
		ChunkIndex:  c.ChunkIndex,
		ContentType: c.ContentType,
		Content:     c.Content,
		Confidence:  c.Confidence,
		Embedding:   embedding,
		CreatedAt:   c.CreatedAt,
	}
}
