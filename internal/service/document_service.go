package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/pkg/document"
	"ai-tutoring-be/pkg/events"

	"github.com/google/uuid"
)

const documentModule = "DocumentService"

type IDocumentService interface {
	Validate(ctx context.Context, file document.File) (*dto.ValidateDocumentResponse, error)
	Upload(ctx context.Context, userId string, file document.File) (*dto.UploadDocumentResponse, error)
	Show(ctx context.Context, userId string, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	ListChunks(ctx context.Context, userId string, id uuid.UUID) ([]*dto.DocumentChunkResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	processor        *document.Processor
	publisherService IPublisherService
	eventPublisher   EventPublisher
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	processor *document.Processor,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		processor:        processor,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *documentService) Validate(ctx context.Context, file document.File) (*dto.ValidateDocumentResponse, error) {
	return &dto.ValidateDocumentResponse{
		Validation:              s.processor.ValidateFile(file),
		EstimatedProcessingTime: s.processor.EstimateProcessingTime(file).Milliseconds(),
	}, nil
}

func (s *documentService) Upload(ctx context.Context, userId string, file document.File) (*dto.UploadDocumentResponse, error) {
	result := s.processor.ProcessDocument(ctx, file)
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", ErrDocumentRejected, result.Error)
	}
	parsed := result.Document

	doc := &entity.Document{
		Id:        uuid.New(),
		UserId:    userId,
		FileName:  file.Name(),
		FileType:  string(s.processor.GetFileType(file)),
		FileSize:  file.Size(),
		Status:    entity.DocumentStatusIndexing,
		Summary:   s.processor.Summarize(ctx, parsed.Text),
		Metadata:  parsed.Metadata,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return nil, err
	}

	chunks := make([]entity.DocumentContentChunk, len(parsed.Chunks))
	for i, c := range parsed.Chunks {
		c.DocumentId = doc.Id.String()
		chunks[i] = c
	}

	payload, err := json.Marshal(dto.IndexDocumentChunksMessage{
		DocumentId: doc.Id,
		UserId:     userId,
		Chunks:     chunks,
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Error(documentModule, "Failed to enqueue chunk indexing", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
		if statusErr := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, entity.DocumentStatusFailed); statusErr != nil {
			s.logger.Error(documentModule, "Failed to mark document as failed", map[string]interface{}{
				"document_id": doc.Id,
				"error":       statusErr.Error(),
			})
		}
		return nil, fmt.Errorf("enqueue chunk indexing: %w", err)
	}

	publishEvent(ctx, s.eventPublisher, s.logger, documentModule,
		events.NewDocumentProcessed(doc.Id.String(), userId, doc.FileType, len(chunks)))

	s.logger.Info(documentModule, "Document uploaded", map[string]interface{}{
		"document_id": doc.Id,
		"user_id":     userId,
		"type":        doc.FileType,
		"chunks":      len(chunks),
	})

	return &dto.UploadDocumentResponse{
		Id:         doc.Id,
		FileName:   doc.FileName,
		FileType:   doc.FileType,
		Status:     doc.Status,
		Summary:    doc.Summary,
		Metadata:   doc.Metadata,
		ChunkCount: len(chunks),
	}, nil
}

func (s *documentService) Show(ctx context.Context, userId string, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	doc, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowDocumentResponse{
		Id:        doc.Id,
		FileName:  doc.FileName,
		FileType:  doc.FileType,
		FileSize:  doc.FileSize,
		Status:    doc.Status,
		Summary:   doc.Summary,
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *documentService) ListChunks(ctx context.Context, userId string, id uuid.UUID) ([]*dto.DocumentChunkResponse, error) {
	doc, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: doc.Id},
		specification.OrderBy{Field: "chunk_index"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		res = append(res, &dto.DocumentChunkResponse{
			Id:           c.Id,
			ChunkIndex:   c.ChunkIndex,
			ContentType:  c.ContentType,
			Content:      c.Content,
			Confidence:   c.Confidence,
			HasEmbedding: len(c.Embedding) > 0,
		})
	}
	return res, nil
}

func (s *documentService) findOwned(ctx context.Context, userId string, id uuid.UUID) (*entity.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}
