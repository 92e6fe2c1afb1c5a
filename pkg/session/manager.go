package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/pkg/store"

	"github.com/google/uuid"
)

const (
	DefaultAutosaveInterval = 30 * time.Second

	logModule = "SessionManager"
)

var (
	ErrConversationRequired = errors.New("conversation id is required")
	ErrEmptySnapshot        = errors.New("snapshot has no context")
	ErrSessionConflict      = errors.New("snapshot session belongs to another conversation")
)

// StartSessionParams describes a brand new session.
type StartSessionParams struct {
	ConversationId string
	UserId         string
	PersonaType    string
	DocumentIds    []string
	ClientMetadata entity.ClientMetadata
}

// Snapshot is a caller-held copy of one conversation's in-memory state.
type Snapshot struct {
	Context   *entity.ConversationContext `json:"context"`
	Session   *entity.ConversationSession `json:"session,omitempty"`
	Timestamp time.Time                   `json:"timestamp"`
}

// Manager owns the lifecycle of conversation sessions and their running contexts.
// At most one session per conversation is active at a time.
type Manager struct {
	mu sync.Mutex
	// writeMu orders session writes to persistence. Taken before mu, never while holding it.
	writeMu sync.Mutex

	store       store.SessionStore
	persistence Persistence
	clock       Clock
	scheduler   Scheduler
	classifier  TopicClassifier
	logger      logger.ILogger
	autosaveLog logger.ILogger
	interval    time.Duration
	newID       func() string

	stopAutosave func()
}

type Option func(*Manager)

func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithScheduler(s Scheduler) Option {
	return func(m *Manager) { m.scheduler = s }
}

func WithClassifier(c TopicClassifier) Option {
	return func(m *Manager) { m.classifier = c }
}

func WithAutosaveInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithAutosaveLogger routes autosave logs to their own sink.
func WithAutosaveLogger(l logger.ILogger) Option {
	return func(m *Manager) { m.autosaveLog = l }
}

func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// NewManager has no side effects; call Start to begin autosaving.
func NewManager(sessions store.SessionStore, persistence Persistence, log logger.ILogger, opts ...Option) *Manager {
	m := &Manager{
		store:       sessions,
		persistence: persistence,
		clock:       systemClock{},
		scheduler:   tickerScheduler{},
		classifier:  NewKeywordClassifier(),
		logger:      log,
		interval:    DefaultAutosaveInterval,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.autosaveLog == nil {
		m.autosaveLog = m.logger
	}
	return m
}

// Start begins periodic autosave. Calling it twice has no effect.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopAutosave != nil {
		return
	}
	m.stopAutosave = m.scheduler.Every(m.interval, m.autosaveAll)
	m.logger.Info(logModule, "Autosave started", map[string]interface{}{
		"interval": m.interval.String(),
	})
}

func (m *Manager) Stop() {
	m.mu.Lock()
	stop := m.stopAutosave
	m.stopAutosave = nil
	m.mu.Unlock()

	if stop != nil {
		stop()
		m.logger.Info(logModule, "Autosave stopped", nil)
	}
}

// Destroy stops autosave and drops every session and context. Safe to call repeatedly.
func (m *Manager) Destroy() {
	m.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Flush()
}

func (m *Manager) StartSession(ctx context.Context, params StartSessionParams) (*entity.ConversationSession, error) {
	if params.ConversationId == "" {
		return nil, ErrConversationRequired
	}

	m.mu.Lock()
	now := m.clock.Now()
	ended := m.endActiveLocked(params.ConversationId, now)

	conversationContext := newContext(params.PersonaType, params.DocumentIds)
	session := &entity.ConversationSession{
		Id:              m.newID(),
		ConversationId:  params.ConversationId,
		UserId:          params.UserId,
		SessionStart:    now,
		ContextSnapshot: *conversationContext.Clone(),
		ResumptionCount: 0,
		ClientMetadata:  normalizeClientMetadata(params.ClientMetadata),
		IsActive:        true,
	}
	m.store.SetContext(params.ConversationId, conversationContext)
	m.store.SetSession(session)
	m.mu.Unlock()

	m.persistEnded(ctx, ended)

	m.logger.Info(logModule, "Session started", map[string]interface{}{
		"session_id":      session.Id,
		"conversation_id": session.ConversationId,
		"persona":         params.PersonaType,
		"device":          session.ClientMetadata.DeviceType,
	})
	return session, nil
}

// ResumeSession opens a new session on an existing conversation. It returns nil, nil
// when the conversation does not exist.
func (m *Manager) ResumeSession(ctx context.Context, conversationID string, meta entity.ClientMetadata) (*entity.SessionRestoreData, error) {
	conv, err := m.persistence.GetConversationByID(ctx, conversationID)
	if err != nil {
		m.logger.Error(logModule, "Failed to load conversation for resume", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
		return nil, fmt.Errorf("load conversation %s: %w", conversationID, err)
	}
	if conv == nil {
		m.logger.Warn(logModule, "Conversation not found, nothing to resume", map[string]interface{}{
			"conversation_id": conversationID,
		})
		return nil, nil
	}

	prior, err := m.persistence.GetSessionsByConversationID(ctx, conversationID)
	if err != nil {
		m.logger.Error(logModule, "Failed to load previous sessions", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
		return nil, fmt.Errorf("load sessions for %s: %w", conversationID, err)
	}

	m.mu.Lock()
	now := m.clock.Now()
	ended := m.endActiveLocked(conversationID, now)
	prior = append(prior, ended...)

	conversationContext, ok := m.store.GetContext(conversationID)
	if !ok {
		conversationContext = reconstructContext(conv, m.classifier)
		m.store.SetContext(conversationID, conversationContext)
	}

	userID := conv.UserId
	session := &entity.ConversationSession{
		Id:              m.newID(),
		ConversationId:  conversationID,
		UserId:          userID,
		SessionStart:    now,
		ContextSnapshot: *conversationContext.Clone(),
		ResumptionCount: len(prior),
		ClientMetadata:  normalizeClientMetadata(meta),
		IsActive:        true,
	}
	m.store.SetSession(session)
	m.mu.Unlock()

	m.persistEnded(ctx, ended)

	data := &entity.SessionRestoreData{
		Conversation:        conv,
		Context:             conversationContext.Clone(),
		Session:             session.Clone(),
		ResumeFromMessageId: ResumePoint(conv.Messages),
		SessionInfo:         buildSessionInfo(conv, prior),
	}

	m.logger.Info(logModule, "Session resumed", map[string]interface{}{
		"session_id":        session.Id,
		"conversation_id":   conversationID,
		"resumption_count":  session.ResumptionCount,
		"context_reused":    ok,
		"resume_message_id": data.ResumeFromMessageId,
	})
	return data, nil
}

// UpdateContext merges update into the stored context and returns the result.
// It returns nil when the conversation has no context.
func (m *Manager) UpdateContext(conversationID string, update ContextUpdate) *entity.ConversationContext {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mutateContextLocked(conversationID, update.apply)
}

// AddMessageToContext folds a message into the rolling window, intent, response and topics.
func (m *Manager) AddMessageToContext(conversationID string, msg entity.Message) *entity.ConversationContext {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mutateContextLocked(conversationID, func(c *entity.ConversationContext) {
		applyMessage(c, msg, m.classifier)
	})
}

// EndSession finalizes and evicts the session, then persists it. An unknown id
// returns nil, nil. On a persistence error the finalized session is still returned.
func (m *Manager) EndSession(ctx context.Context, sessionID string) (*entity.ConversationSession, error) {
	m.mu.Lock()
	session, ok := m.store.GetSession(sessionID)
	if !ok {
		m.mu.Unlock()
		return nil, nil
	}
	m.finalizeLocked(session, m.clock.Now())
	m.mu.Unlock()

	m.writeMu.Lock()
	err := m.persistence.SaveSession(ctx, session)
	m.writeMu.Unlock()
	if err != nil {
		m.logger.Error(logModule, "Failed to persist ended session", map[string]interface{}{
			"session_id":      session.Id,
			"conversation_id": session.ConversationId,
			"error":           err.Error(),
		})
		return session, fmt.Errorf("save session %s: %w", session.Id, err)
	}

	m.logger.Info(logModule, "Session ended", map[string]interface{}{
		"session_id":        session.Id,
		"conversation_id":   session.ConversationId,
		"total_active_time": session.TotalActiveTime,
	})
	return session, nil
}

// Autosave persists the current context and active session. Failures are logged only.
func (m *Manager) Autosave(ctx context.Context, conversationID string) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	conversationContext, ok := m.store.GetContext(conversationID)
	if !ok {
		m.mu.Unlock()
		return
	}

	var session *entity.ConversationSession
	if active := m.activeSessionLocked(conversationID); active != nil {
		now := m.clock.Now()
		m.store.UpdateSession(active.Id, func(s *entity.ConversationSession) {
			s.TotalActiveTime = activeSeconds(s.SessionStart, now)
			s.ContextSnapshot = *conversationContext.Clone()
		})
		session, _ = m.store.GetSession(active.Id)
	}
	m.mu.Unlock()

	if err := m.persistence.SaveConversationState(ctx, conversationID, conversationContext, session); err != nil {
		m.autosaveLog.Error(logModule, "Autosave failed", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
		return
	}
	m.autosaveLog.Debug(logModule, "Autosaved conversation state", map[string]interface{}{
		"conversation_id": conversationID,
	})
}

func (m *Manager) autosaveAll() {
	defer func() {
		if r := recover(); r != nil {
			m.autosaveLog.Error(logModule, "Autosave tick panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	for _, id := range m.store.ConversationIDs() {
		m.Autosave(ctx, id)
	}
}

// CreateSnapshot copies out the context and active session. Nil without a context.
func (m *Manager) CreateSnapshot(conversationID string) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	conversationContext, ok := m.store.GetContext(conversationID)
	if !ok {
		return nil
	}
	return &Snapshot{
		Context:   conversationContext,
		Session:   m.activeSessionLocked(conversationID),
		Timestamp: m.clock.Now(),
	}
}

// RestoreFromSnapshot copies a snapshot back in. The restored session is always active
// and replaces any other active session of the conversation. A session id held by
// another conversation is rejected with ErrSessionConflict and nothing is changed.
func (m *Manager) RestoreFromSnapshot(conversationID string, snapshot Snapshot) error {
	if snapshot.Context == nil {
		return ErrEmptySnapshot
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snapshot.Session != nil {
		if held, ok := m.store.GetSession(snapshot.Session.Id); ok && held.ConversationId != conversationID {
			return ErrSessionConflict
		}
	}

	m.store.SetContext(conversationID, snapshot.Context)
	if snapshot.Session == nil {
		return nil
	}

	restored := snapshot.Session.Clone()
	restored.ConversationId = conversationID
	restored.IsActive = true
	restored.SessionEnd = nil
	restored.ContextSnapshot = *snapshot.Context.Clone()

	for _, s := range m.store.Sessions() {
		if s.ConversationId == conversationID && s.Id != restored.Id {
			m.store.DeleteSession(s.Id)
		}
	}
	m.store.SetSession(restored)

	m.logger.Info(logModule, "Session restored from snapshot", map[string]interface{}{
		"session_id":      restored.Id,
		"conversation_id": conversationID,
		"snapshot_at":     snapshot.Timestamp,
	})
	return nil
}

// GetSession returns a copy of an in-memory session, active or not yet evicted.
func (m *Manager) GetSession(sessionID string) *entity.ConversationSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.store.GetSession(sessionID)
	if !ok {
		return nil
	}
	return session
}

func (m *Manager) GetActiveSession(conversationID string) *entity.ConversationSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeSessionLocked(conversationID)
}

func (m *Manager) GetContext(conversationID string) *entity.ConversationContext {
	conversationContext, ok := m.store.GetContext(conversationID)
	if !ok {
		return nil
	}
	return conversationContext
}

func (m *Manager) mutateContextLocked(conversationID string, fn func(*entity.ConversationContext)) *entity.ConversationContext {
	if !m.store.UpdateContext(conversationID, fn) {
		return nil
	}
	updated, _ := m.store.GetContext(conversationID)

	if active := m.activeSessionLocked(conversationID); active != nil {
		m.store.UpdateSession(active.Id, func(s *entity.ConversationSession) {
			s.ContextSnapshot = *updated.Clone()
		})
	}
	return updated
}

func (m *Manager) activeSessionLocked(conversationID string) *entity.ConversationSession {
	for _, s := range m.store.Sessions() {
		if s.ConversationId == conversationID && s.IsActive {
			return s
		}
	}
	return nil
}

// endActiveLocked finalizes and evicts every active session of the conversation.
func (m *Manager) endActiveLocked(conversationID string, now time.Time) []*entity.ConversationSession {
	var ended []*entity.ConversationSession
	for _, s := range m.store.Sessions() {
		if s.ConversationId == conversationID && s.IsActive {
			m.finalizeLocked(s, now)
			ended = append(ended, s)
		}
	}
	return ended
}

func (m *Manager) finalizeLocked(s *entity.ConversationSession, now time.Time) {
	if now.Before(s.SessionStart) {
		now = s.SessionStart
	}
	end := now
	s.SessionEnd = &end
	s.TotalActiveTime = activeSeconds(s.SessionStart, now)
	s.IsActive = false
	if c, ok := m.store.GetContext(s.ConversationId); ok {
		s.ContextSnapshot = *c
	}
	m.store.DeleteSession(s.Id)
}

// persistEnded saves sessions that were closed implicitly. Failures are logged only.
func (m *Manager) persistEnded(ctx context.Context, ended []*entity.ConversationSession) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	for _, s := range ended {
		if err := m.persistence.SaveSession(ctx, s); err != nil {
			m.logger.Error(logModule, "Failed to persist implicitly ended session", map[string]interface{}{
				"session_id":      s.Id,
				"conversation_id": s.ConversationId,
				"error":           err.Error(),
			})
			continue
		}
		m.logger.Info(logModule, "Previous active session ended", map[string]interface{}{
			"session_id":      s.Id,
			"conversation_id": s.ConversationId,
		})
	}
}
