package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	consumerModule = "ChunkIndexer"

	// maxIndexAttempts bounds redelivery before a document is marked failed.
	maxIndexAttempts = 3
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger

	mu       sync.Mutex
	attempts map[uuid.UUID]int
}

// NewConsumerService indexes processed chunks. embeddingProvider may be nil to store
// chunks without vectors.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
		attempts:          make(map[uuid.UUID]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexDocumentChunksMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal chunk index job", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	if err := cs.index(ctx, payload); err != nil {
		if cs.retry(payload.DocumentId) {
			cs.logger.Warn(consumerModule, "Chunk indexing failed, retrying", map[string]interface{}{
				"document_id": payload.DocumentId,
				"error":       err.Error(),
			})
			msg.Nack()
			return
		}

		cs.logger.Error(consumerModule, "Chunk indexing failed permanently", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		cs.markFailed(ctx, payload.DocumentId)
	}

	cs.clearAttempts(payload.DocumentId)
	msg.Ack()
}

func (cs *consumerService) index(ctx context.Context, payload dto.IndexDocumentChunksMessage) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		cs.logger.Warn(consumerModule, "Document not found, dropping job", map[string]interface{}{
			"document_id": payload.DocumentId,
		})
		return nil
	}

	chunks := cs.buildChunks(ctx, doc.Id, payload.Chunks)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}
	if len(chunks) > 0 {
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
			return fmt.Errorf("create chunks: %w", err)
		}
	}
	if err := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, entity.DocumentStatusReady); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	cs.logger.Info(consumerModule, "Document indexed", map[string]interface{}{
		"document_id": doc.Id,
		"chunks":      len(chunks),
	})
	return nil
}

// buildChunks stamps the persisted document id into every chunk and embeds it when a
// provider is configured. An embedding failure leaves that chunk without a vector.
func (cs *consumerService) buildChunks(ctx context.Context, documentId uuid.UUID, parsed []entity.DocumentContentChunk) []*entity.DocumentChunk {
	now := time.Now()
	out := make([]*entity.DocumentChunk, 0, len(parsed))

	for _, c := range parsed {
		chunk := &entity.DocumentChunk{
			Id:          uuid.New(),
			DocumentId:  documentId,
			ChunkIndex:  c.ChunkIndex,
			ContentType: c.ContentType,
			Content:     c.Content,
			Confidence:  c.Metadata.Confidence,
			CreatedAt:   now,
		}

		if cs.embeddingProvider != nil {
			vec, err := cs.embeddingProvider.Embed(ctx, c.Content)
			if err != nil {
				cs.logger.Warn(consumerModule, "Failed to embed chunk", map[string]interface{}{
					"document_id": documentId,
					"chunk_index": c.ChunkIndex,
					"error":       err.Error(),
				})
			} else {
				chunk.Embedding = vec
			}
		}

		out = append(out, chunk)
	}
	return out
}

func (cs *consumerService) retry(documentId uuid.UUID) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.attempts[documentId]++
	return cs.attempts[documentId] < maxIndexAttempts
}

func (cs *consumerService) clearAttempts(documentId uuid.UUID) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.attempts, documentId)
}

func (cs *consumerService) markFailed(ctx context.Context, documentId uuid.UUID) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().UpdateStatus(ctx, documentId, entity.DocumentStatusFailed); err != nil {
		cs.logger.Error(consumerModule, "Failed to mark document as failed", map[string]interface{}{
			"document_id": documentId,
			"error":       err.Error(),
		})
	}
}
