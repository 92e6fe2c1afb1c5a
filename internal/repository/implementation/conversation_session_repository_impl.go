package implementation

import (
	"context"
	"errors"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/mapper"
	"ai-tutoring-be/internal/model"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewConversationSessionRepository(db *gorm.DB) contract.ConversationSessionRepository {
	return &ConversationSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *ConversationSessionRepositoryImpl) Save(ctx context.Context, session *entity.ConversationSession) error {
	return r.upsert(ctx, session, clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true})
}

func (r *ConversationSessionRepositoryImpl) SaveOpen(ctx context.Context, session *entity.ConversationSession) error {
	return r.upsert(ctx, session, clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "conversation_sessions.session_end IS NULL"},
		}},
	})
}

func (r *ConversationSessionRepositoryImpl) upsert(ctx context.Context, session *entity.ConversationSession, onConflict clause.OnConflict) error {
	m, err := r.mapper.SessionToModel(session)
	if err != nil {
		return err
	}
	if m.Id == uuid.Nil {
		return errors.New("session id must be a uuid")
	}
	return r.db.WithContext(ctx).Clauses(onConflict).Create(m).Error
}

func (r *ConversationSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationSession, error) {
	var m model.ConversationSession
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m)
}

func (r *ConversationSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationSession, error) {
	var models []*model.ConversationSession
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.ConversationSession, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.SessionToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *ConversationSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.ConversationSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type ConversationStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewConversationStateRepository(db *gorm.DB) contract.ConversationStateRepository {
	return &ConversationStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *ConversationStateRepositoryImpl) Upsert(ctx context.Context, state *entity.ConversationState) error {
	m, err := r.mapper.StateToModel(state)
	if err != nil {
		return err
	}
	if m.ConversationId == uuid.Nil {
		return errors.New("conversation id must be a uuid")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "conversation_id"}}, UpdateAll: true}).
		Create(m).Error
}

func (r *ConversationStateRepositoryImpl) FindByConversationId(ctx context.Context, conversationId string) (*entity.ConversationState, error) {
	id, err := uuid.Parse(conversationId)
	if err != nil {
		return nil, nil
	}

	var m model.ConversationState
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.StateToEntity(&m)
}
