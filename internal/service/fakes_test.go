package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/pkg/events"

	"github.com/google/uuid"
)

// memoryDB is a tiny in-memory stand-in for postgres. It understands the
// specifications the services use and ignores ordering/paging ones.
type memoryDB struct {
	mu sync.Mutex

	conversations map[string]*entity.Conversation
	messages      []entity.Message
	sessions      map[string]*entity.ConversationSession
	states        map[string]*entity.ConversationState
	documents     map[uuid.UUID]*entity.Document
	chunks        []*entity.DocumentChunk

	saveSessionErr error
	createChunkErr error
	commits        int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		conversations: make(map[string]*entity.Conversation),
		sessions:      make(map[string]*entity.ConversationSession),
		states:        make(map[string]*entity.ConversationState),
		documents:     make(map[uuid.UUID]*entity.Document),
	}
}

type fakeFactory struct{ db *memoryDB }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{db: f.db}
}

type fakeUoW struct {
	db   *memoryDB
	inTx bool
}

func (u *fakeUoW) Begin(ctx context.Context) error {
	if u.inTx {
		return errors.New("transaction already started")
	}
	u.inTx = true
	return nil
}

func (u *fakeUoW) Commit() error {
	if !u.inTx {
		return errors.New("no transaction to commit")
	}
	u.inTx = false
	u.db.mu.Lock()
	u.db.commits++
	u.db.mu.Unlock()
	return nil
}

func (u *fakeUoW) Rollback() error {
	if !u.inTx {
		return errors.New("no transaction to rollback")
	}
	u.inTx = false
	return nil
}

func (u *fakeUoW) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{db: u.db}
}
func (u *fakeUoW) MessageRepository() contract.MessageRepository { return &fakeMessageRepo{db: u.db} }
func (u *fakeUoW) ConversationSessionRepository() contract.ConversationSessionRepository {
	return &fakeSessionRepo{db: u.db}
}
func (u *fakeUoW) ConversationStateRepository() contract.ConversationStateRepository {
	return &fakeStateRepo{db: u.db}
}
func (u *fakeUoW) DocumentRepository() contract.DocumentRepository { return &fakeDocumentRepo{db: u.db} }
func (u *fakeUoW) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &fakeChunkRepo{db: u.db}
}

// filter describes the subset of specifications a row must satisfy.
type filter struct {
	id             *uuid.UUID
	userId         *string
	conversationId *uuid.UUID
	documentId     *uuid.UUID
	endedOnly      bool
}

func toFilter(specs []specification.Specification) filter {
	var f filter
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			f.id = &id
		case specification.OwnedBy:
			u := s.UserID
			f.userId = &u
		case specification.ByConversationID:
			id := s.ConversationID
			f.conversationId = &id
		case specification.ByDocumentID:
			id := s.DocumentID
			f.documentId = &id
		case specification.EndedSessions:
			f.endedOnly = true
		}
	}
	return f
}

func matchString(want *uuid.UUID, got string) bool {
	return want == nil || want.String() == got
}

type fakeConversationRepo struct{ db *memoryDB }

func (r *fakeConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c.Id == "" {
		c.Id = uuid.New().String()
	}
	cp := *c
	r.db.conversations[c.Id] = &cp
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, c *entity.Conversation) error {
	return r.Create(ctx, c)
}

func (r *fakeConversationRepo) Touch(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c, ok := r.db.conversations[id]; ok {
		now := time.Now()
		c.UpdatedAt = &now
	}
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := toFilter(specs)
	out := []*entity.Conversation{}
	for _, c := range r.db.conversations {
		if !matchString(f.id, c.Id) || (f.userId != nil && *f.userId != c.UserId) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeMessageRepo struct{ db *memoryDB }

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.messages = append(r.db.messages, *m)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := toFilter(specs)
	out := []entity.Message{}
	for _, m := range r.db.messages {
		if matchString(f.conversationId, m.ConversationId) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeSessionRepo struct{ db *memoryDB }

func (r *fakeSessionRepo) Save(ctx context.Context, s *entity.ConversationSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.saveSessionErr != nil {
		return r.db.saveSessionErr
	}
	r.db.sessions[s.Id] = s.Clone()
	return nil
}

func (r *fakeSessionRepo) SaveOpen(ctx context.Context, s *entity.ConversationSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.saveSessionErr != nil {
		return r.db.saveSessionErr
	}
	if existing, ok := r.db.sessions[s.Id]; ok && existing.SessionEnd != nil {
		return nil
	}
	r.db.sessions[s.Id] = s.Clone()
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationSession, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := toFilter(specs)
	out := []*entity.ConversationSession{}
	for _, s := range r.db.sessions {
		if !matchString(f.id, s.Id) || !matchString(f.conversationId, s.ConversationId) {
			continue
		}
		if f.endedOnly && s.SessionEnd == nil {
			continue
		}
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionStart.Before(out[j].SessionStart) })
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeStateRepo struct{ db *memoryDB }

func (r *fakeStateRepo) Upsert(ctx context.Context, state *entity.ConversationState) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *state
	r.db.states[state.ConversationId] = &cp
	return nil
}

func (r *fakeStateRepo) FindByConversationId(ctx context.Context, conversationId string) (*entity.ConversationState, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.states[conversationId]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

type fakeDocumentRepo struct{ db *memoryDB }

func (r *fakeDocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *d
	r.db.documents[d.Id] = &cp
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	return r.Create(ctx, d)
}

func (r *fakeDocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if d, ok := r.db.documents[id]; ok {
		d.Status = status
	}
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := toFilter(specs)
	out := []*entity.Document{}
	for _, d := range r.db.documents {
		if f.id != nil && *f.id != d.Id {
			continue
		}
		if f.userId != nil && *f.userId != d.UserId {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryDB) documentStatus(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.documents[id]; ok {
		return d.Status
	}
	return ""
}

type fakeChunkRepo struct{ db *memoryDB }

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.createChunkErr != nil {
		return r.db.createChunkErr
	}
	r.db.chunks = append(r.db.chunks, chunks...)
	return nil
}

func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.chunks[:0]
	for _, c := range r.db.chunks {
		if c.DocumentId != documentId {
			kept = append(kept, c)
		}
	}
	r.db.chunks = kept
	return nil
}

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := toFilter(specs)
	out := []*entity.DocumentChunk{}
	for _, c := range r.db.chunks {
		if f.documentId != nil && *f.documentId != c.DocumentId {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type memoryStateCache struct {
	mu     sync.Mutex
	states map[string]*entity.ConversationState
	setErr error
}

func newMemoryStateCache() *memoryStateCache {
	return &memoryStateCache{states: make(map[string]*entity.ConversationState)}
}

func (c *memoryStateCache) Set(ctx context.Context, state *entity.ConversationState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	cp := *state
	c.states[state.ConversationId] = &cp
	return nil
}

func (c *memoryStateCache) Get(ctx context.Context, conversationId string) (*entity.ConversationState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.states[conversationId]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}
