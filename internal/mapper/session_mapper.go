package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func encodeContext(c entity.ConversationContext) (datatypes.JSON, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func decodeContext(raw datatypes.JSON) (entity.ConversationContext, error) {
	var c entity.ConversationContext
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("decode context: %w", err)
	}
	return c, nil
}

func (m *SessionMapper) SessionToEntity(s *model.ConversationSession) (*entity.ConversationSession, error) {
	if s == nil {
		return nil, nil
	}

	snapshot, err := decodeContext(s.ContextSnapshot)
	if err != nil {
		return nil, err
	}

	var end *time.Time
	if s.SessionEnd != nil {
		t := *s.SessionEnd
		end = &t
	}

	return &entity.ConversationSession{
		Id:              idString(s.Id),
		ConversationId:  idString(s.ConversationId),
		UserId:          s.UserId,
		SessionStart:    s.SessionStart,
		SessionEnd:      end,
		ContextSnapshot: snapshot,
		ResumptionCount: s.ResumptionCount,
		TotalActiveTime: s.TotalActiveTime,
		ClientMetadata: entity.ClientMetadata{
			UserAgent:  s.UserAgent,
			DeviceType: s.DeviceType,
		},
		IsActive: s.IsActive,
	}, nil
}

func (m *SessionMapper) SessionToModel(s *entity.ConversationSession) (*model.ConversationSession, error) {
	if s == nil {
		return nil, nil
	}

	snapshot, err := encodeContext(s.ContextSnapshot)
	if err != nil {
		return nil, err
	}

	return &model.ConversationSession{
		Id:              parseID(s.Id),
		ConversationId:  parseID(s.ConversationId),
		UserId:          s.UserId,
		SessionStart:    s.SessionStart,
		SessionEnd:      s.SessionEnd,
		ContextSnapshot: snapshot,
		ResumptionCount: s.ResumptionCount,
		TotalActiveTime: s.TotalActiveTime,
		UserAgent:       s.ClientMetadata.UserAgent,
		DeviceType:      s.ClientMetadata.DeviceType,
		IsActive:        s.IsActive,
	}, nil
}

func (m *SessionMapper) StateToEntity(s *model.ConversationState) (*entity.ConversationState, error) {
	if s == nil {
		return nil, nil
	}

	c, err := decodeContext(s.Context)
	if err != nil {
		return nil, err
	}

	state := &entity.ConversationState{
		ConversationId:  idString(s.ConversationId),
		Context:         c,
		TotalActiveTime: s.TotalActiveTime,
		SavedAt:         s.UpdatedAt,
	}
	if s.ActiveSessionId != nil {
		state.ActiveSessionId = s.ActiveSessionId.String()
	}
	return state, nil
}

func (m *SessionMapper) StateToModel(s *entity.ConversationState) (*model.ConversationState, error) {
	if s == nil {
		return nil, nil
	}

	c, err := encodeContext(s.Context)
	if err != nil {
		return nil, err
	}

	out := &model.ConversationState{
		ConversationId:  parseID(s.ConversationId),
		Context:         c,
		TotalActiveTime: s.TotalActiveTime,
		UpdatedAt:       s.SavedAt,
	}
	if id := parseID(s.ActiveSessionId); id != uuid.Nil {
		out.ActiveSessionId = &id
	}
	return out, nil
}
