package memory

import (
	"sort"
	"strings"
	"sync"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

const (
	sessionPrefix = "session:"
	contextPrefix = "context:"
)

// SessionRepository keeps session manager state in a go-cache instance.
// Entries never expire; the manager evicts them explicitly.
type SessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ store.SessionStore = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *SessionRepository) GetSession(id string) (*entity.ConversationSession, bool) {
	if x, found := r.cache.Get(sessionPrefix + id); found {
		return x.(*entity.ConversationSession).Clone(), true
	}
	return nil, false
}

func (r *SessionRepository) SetSession(session *entity.ConversationSession) {
	r.cache.Set(sessionPrefix+session.Id, session.Clone(), cache.NoExpiration)
}

func (r *SessionRepository) UpdateSession(id string, fn func(*entity.ConversationSession)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(sessionPrefix + id)
	if !found {
		return false
	}
	session := x.(*entity.ConversationSession).Clone()
	fn(session)
	r.cache.Set(sessionPrefix+id, session, cache.NoExpiration)
	return true
}

func (r *SessionRepository) DeleteSession(id string) {
	r.cache.Delete(sessionPrefix + id)
}

// Sessions returns copies ordered by start time, then id.
func (r *SessionRepository) Sessions() []*entity.ConversationSession {
	var out []*entity.ConversationSession
	for key, item := range r.cache.Items() {
		if strings.HasPrefix(key, sessionPrefix) {
			out = append(out, item.Object.(*entity.ConversationSession).Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SessionStart.Equal(out[j].SessionStart) {
			return out[i].Id < out[j].Id
		}
		return out[i].SessionStart.Before(out[j].SessionStart)
	})
	return out
}

func (r *SessionRepository) GetContext(conversationID string) (*entity.ConversationContext, bool) {
	if x, found := r.cache.Get(contextPrefix + conversationID); found {
		return x.(*entity.ConversationContext).Clone(), true
	}
	return nil, false
}

func (r *SessionRepository) SetContext(conversationID string, ctx *entity.ConversationContext) {
	r.cache.Set(contextPrefix+conversationID, ctx.Clone(), cache.NoExpiration)
}

func (r *SessionRepository) UpdateContext(conversationID string, fn func(*entity.ConversationContext)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(contextPrefix + conversationID)
	if !found {
		return false
	}
	ctx := x.(*entity.ConversationContext).Clone()
	fn(ctx)
	r.cache.Set(contextPrefix+conversationID, ctx, cache.NoExpiration)
	return true
}

func (r *SessionRepository) DeleteContext(conversationID string) {
	r.cache.Delete(contextPrefix + conversationID)
}

func (r *SessionRepository) ConversationIDs() []string {
	seen := make(map[string]struct{})
	for key, item := range r.cache.Items() {
		switch {
		case strings.HasPrefix(key, contextPrefix):
			seen[strings.TrimPrefix(key, contextPrefix)] = struct{}{}
		case strings.HasPrefix(key, sessionPrefix):
			seen[item.Object.(*entity.ConversationSession).ConversationId] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *SessionRepository) Flush() {
	r.cache.Flush()
}
