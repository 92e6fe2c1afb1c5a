package service

import (
	"context"
	"testing"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/memory"
	"ai-tutoring-be/pkg/events"
	"ai-tutoring-be/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionHarness struct {
	db      *memoryDB
	cache   *memoryStateCache
	events  *recordingEvents
	manager *session.Manager
	service ISessionService
}

func newSessionHarness(t *testing.T) *sessionHarness {
	t.Helper()

	h := &sessionHarness{
		db:     newMemoryDB(),
		cache:  newMemoryStateCache(),
		events: &recordingEvents{},
	}
	factory := &fakeFactory{db: h.db}
	persistence := NewSessionPersistence(factory, h.cache, logger.NewNopLogger())
	h.manager = session.NewManager(memory.NewSessionRepository(), persistence, logger.NewNopLogger())
	t.Cleanup(h.manager.Destroy)

	h.service = NewSessionService(factory, h.manager, persistence, h.events, logger.NewNopLogger())
	return h
}

var desktop = entity.ClientMetadata{UserAgent: "Mozilla/5.0 (X11; Linux x86_64)"}

func (h *sessionHarness) start(t *testing.T, userId string) *dto.SessionResponse {
	t.Helper()
	res, err := h.service.Start(context.Background(), userId, desktop, &dto.StartSessionRequest{PersonaType: "math_tutor"})
	require.NoError(t, err)
	return res
}

func TestSessionService_StartCreatesConversation(t *testing.T) {
	h := newSessionHarness(t)

	res := h.start(t, "user-1")

	assert.True(t, res.IsActive)
	assert.Equal(t, entity.DeviceTypeDesktop, res.DeviceType)
	require.NotNil(t, res.Context)
	assert.Equal(t, "math_tutor", res.Context.PersonaType)
	require.Contains(t, h.db.conversations, res.ConversationId)
	assert.Equal(t, "user-1", h.db.conversations[res.ConversationId].UserId)
	assert.Equal(t, []string{events.TypeSessionStarted}, h.events.types())
}

func TestSessionService_StartOnForeignConversation(t *testing.T) {
	h := newSessionHarness(t)
	owned := h.start(t, "user-1")

	_, err := h.service.Start(context.Background(), "user-2", desktop, &dto.StartSessionRequest{
		ConversationId: owned.ConversationId,
		PersonaType:    "math_tutor",
	})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSessionService_AddMessagePersistsThenUpdatesContext(t *testing.T) {
	h := newSessionHarness(t)
	started := h.start(t, "user-1")

	res, err := h.service.AddMessage(context.Background(), "user-1", started.ConversationId, &dto.AddMessageRequest{
		Role:    entity.MessageRoleUser,
		Content: "Can you explain the quadratic equation?",
	})
	require.NoError(t, err)

	require.Len(t, h.db.messages, 1)
	assert.Equal(t, res.Message.Id, h.db.messages[0].Id)
	require.NotNil(t, res.Context)
	require.Len(t, res.Context.ConversationWindow, 1)
	assert.Equal(t, "Can you explain the quadratic equation?", res.Context.LastUserIntent)
	assert.Contains(t, res.Context.KeyTopics, string(session.TopicMathematics))
	assert.NotNil(t, h.db.conversations[started.ConversationId].UpdatedAt)
}

func TestSessionService_EndIsOwnerScoped(t *testing.T) {
	h := newSessionHarness(t)
	started := h.start(t, "user-1")

	_, err := h.service.End(context.Background(), "user-2", started.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	ended, err := h.service.End(context.Background(), "user-1", started.Id)
	require.NoError(t, err)
	assert.False(t, ended.IsActive)
	assert.NotNil(t, ended.SessionEnd)
	assert.Contains(t, h.db.sessions, started.Id)
	assert.Equal(t, []string{events.TypeSessionStarted, events.TypeSessionEnded}, h.events.types())

	_, err = h.service.End(context.Background(), "user-1", started.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_ResumeAfterEnd(t *testing.T) {
	h := newSessionHarness(t)
	ctx := context.Background()
	started := h.start(t, "user-1")

	_, err := h.service.AddMessage(ctx, "user-1", started.ConversationId, &dto.AddMessageRequest{Role: entity.MessageRoleUser, Content: "Tell me about photosynthesis"})
	require.NoError(t, err)
	_, err = h.service.End(ctx, "user-1", started.Id)
	require.NoError(t, err)

	resumed, err := h.service.Resume(ctx, "user-1", started.ConversationId, entity.ClientMetadata{UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile"})
	require.NoError(t, err)

	assert.Equal(t, 1, resumed.Session.ResumptionCount)
	assert.Equal(t, entity.DeviceTypeMobile, resumed.Session.DeviceType)
	assert.Equal(t, 1, resumed.SessionInfo.PreviousSessions)
	assert.Equal(t, h.db.messages[0].Id, resumed.ResumeFromMessageId)
	assert.Contains(t, resumed.Context.KeyTopics, string(session.TopicBiology))

	active, err := h.service.GetActive(ctx, "user-1", started.ConversationId)
	require.NoError(t, err)
	assert.Equal(t, resumed.Session.Id, active.Id)

	_, err = h.service.Resume(ctx, "user-2", started.ConversationId, desktop)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSessionService_UpdateContext(t *testing.T) {
	h := newSessionHarness(t)
	ctx := context.Background()

	conv, err := NewConversationService(&fakeFactory{db: h.db}).Create(ctx, "user-1", &dto.CreateConversationRequest{})
	require.NoError(t, err)

	summary := "Covered fractions"
	_, err = h.service.UpdateContext(ctx, "user-1", conv.Id, &dto.UpdateContextRequest{ConversationSummary: &summary})
	assert.ErrorIs(t, err, ErrContextNotFound)

	started, err := h.service.Start(ctx, "user-1", desktop, &dto.StartSessionRequest{ConversationId: conv.Id, PersonaType: "math_tutor"})
	require.NoError(t, err)

	updated, err := h.service.UpdateContext(ctx, "user-1", started.ConversationId, &dto.UpdateContextRequest{ConversationSummary: &summary})
	require.NoError(t, err)
	assert.Equal(t, summary, updated.ConversationSummary)
	assert.Equal(t, "math_tutor", updated.PersonaType)
}

func TestSessionService_SnapshotRestore(t *testing.T) {
	h := newSessionHarness(t)
	ctx := context.Background()
	started := h.start(t, "user-1")

	snap, err := h.service.Snapshot(ctx, "user-1", started.ConversationId)
	require.NoError(t, err)
	require.NotNil(t, snap.Session)

	_, err = h.service.End(ctx, "user-1", started.Id)
	require.NoError(t, err)

	restored, err := h.service.Restore(ctx, "user-1", started.ConversationId, &dto.RestoreSnapshotRequest{
		Context: snap.Context,
		Session: &entity.ConversationSession{Id: snap.Session.Id, ConversationId: started.ConversationId},
	})
	require.NoError(t, err)
	require.NotNil(t, restored.Session)
	assert.True(t, restored.Session.IsActive)
	assert.NotEqual(t, started.Id, restored.Session.Id)
	assert.Equal(t, "math_tutor", restored.Context.PersonaType)
}

func TestSessionService_RestoreKeepsLiveSessionId(t *testing.T) {
	h := newSessionHarness(t)
	ctx := context.Background()
	started := h.start(t, "user-1")

	snap, err := h.service.Snapshot(ctx, "user-1", started.ConversationId)
	require.NoError(t, err)

	restored, err := h.service.Restore(ctx, "user-1", started.ConversationId, &dto.RestoreSnapshotRequest{
		Context: snap.Context,
		Session: &entity.ConversationSession{Id: snap.Session.Id, ConversationId: started.ConversationId},
	})
	require.NoError(t, err)
	assert.Equal(t, started.Id, restored.Session.Id)
}

func TestSessionService_RestoreCannotTakeOverForeignSession(t *testing.T) {
	h := newSessionHarness(t)
	ctx := context.Background()
	victim := h.start(t, "user-1")
	attacker := h.start(t, "user-2")

	snap, err := h.service.Snapshot(ctx, "user-2", attacker.ConversationId)
	require.NoError(t, err)

	restored, err := h.service.Restore(ctx, "user-2", attacker.ConversationId, &dto.RestoreSnapshotRequest{
		Context: snap.Context,
		Session: &entity.ConversationSession{Id: victim.Id, ConversationId: attacker.ConversationId},
	})
	require.NoError(t, err)
	assert.NotEqual(t, victim.Id, restored.Session.Id)

	held := h.manager.GetSession(victim.Id)
	require.NotNil(t, held)
	assert.Equal(t, victim.ConversationId, held.ConversationId)
	assert.Equal(t, "user-1", held.UserId)
	assert.True(t, held.IsActive)
}

func TestSessionService_StateAfterAutosave(t *testing.T) {
	h := newSessionHarness(t)
	ctx := context.Background()
	started := h.start(t, "user-1")

	_, err := h.service.State(ctx, "user-1", started.ConversationId)
	assert.ErrorIs(t, err, ErrStateNotFound)

	h.manager.Autosave(ctx, started.ConversationId)

	state, err := h.service.State(ctx, "user-1", started.ConversationId)
	require.NoError(t, err)
	assert.Equal(t, started.Id, state.ActiveSessionId)
	assert.Equal(t, "math_tutor", state.Context.PersonaType)

	_, err = h.service.State(ctx, "user-2", started.ConversationId)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
