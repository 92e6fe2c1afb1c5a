package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-tutoring-be/internal/entity"
)

type fakePersistence struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	sessions      map[string][]*entity.ConversationSession
	states        map[string]*entity.ConversationContext
	stateSessions map[string]*entity.ConversationSession
	// rows mirrors the session table: every write upserts by id.
	rows map[string]*entity.ConversationSession

	stateEntered chan struct{}
	stateRelease chan struct{}

	getErr   error
	saveErr  error
	stateErr error
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{
		conversations: make(map[string]*entity.Conversation),
		sessions:      make(map[string][]*entity.ConversationSession),
		states:        make(map[string]*entity.ConversationContext),
		stateSessions: make(map[string]*entity.ConversationSession),
		rows:          make(map[string]*entity.ConversationSession),
	}
}

func (f *fakePersistence) GetConversationByID(ctx context.Context, id string) (*entity.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.conversations[id], nil
}

func (f *fakePersistence) GetSessionsByConversationID(ctx context.Context, id string) ([]*entity.ConversationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.ConversationSession(nil), f.sessions[id]...), nil
}

func (f *fakePersistence) SaveSession(ctx context.Context, s *entity.ConversationSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.sessions[s.ConversationId] = append(f.sessions[s.ConversationId], s.Clone())
	f.rows[s.Id] = s.Clone()
	return nil
}

func (f *fakePersistence) SaveConversationState(ctx context.Context, id string, c *entity.ConversationContext, s *entity.ConversationSession) error {
	if f.stateEntered != nil {
		f.stateEntered <- struct{}{}
		<-f.stateRelease
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stateErr != nil {
		return f.stateErr
	}
	f.states[id] = c.Clone()
	f.stateSessions[id] = s.Clone()
	if s != nil {
		f.rows[s.Id] = s.Clone()
	}
	return nil
}

// holdStateWrites makes SaveConversationState signal entry and wait for release.
func (f *fakePersistence) holdStateWrites() {
	f.stateEntered = make(chan struct{}, 1)
	f.stateRelease = make(chan struct{})
}

func (f *fakePersistence) row(id string) *entity.ConversationSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].Clone()
}

func (f *fakePersistence) savedSessions(id string) []*entity.ConversationSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// manualScheduler captures the job so tests fire ticks by hand.
type manualScheduler struct {
	mu       sync.Mutex
	job      func()
	interval time.Duration
	starts   int
	stops    int
}

func (s *manualScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = fn
	s.interval = interval
	s.starts++
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.job = nil
		s.stops++
	}
}

func (s *manualScheduler) Tick() bool {
	s.mu.Lock()
	job := s.job
	s.mu.Unlock()
	if job == nil {
		return false
	}
	job()
	return true
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
