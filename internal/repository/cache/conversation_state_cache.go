package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-tutoring-be/internal/entity"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "conversation_state:"

// ConversationStateCache keeps the latest autosaved state of each conversation in Redis.
type ConversationStateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewConversationStateCache(rdb *redis.Client, ttl time.Duration) *ConversationStateCache {
	return &ConversationStateCache{rdb: rdb, ttl: ttl}
}

func stateKey(conversationId string) string {
	return stateKeyPrefix + conversationId
}

func (c *ConversationStateCache) Set(ctx context.Context, state *entity.ConversationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode conversation state: %w", err)
	}
	return c.rdb.Set(ctx, stateKey(state.ConversationId), raw, c.ttl).Err()
}

// Get returns nil, nil on a cache miss.
func (c *ConversationStateCache) Get(ctx context.Context, conversationId string) (*entity.ConversationState, error) {
	raw, err := c.rdb.Get(ctx, stateKey(conversationId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state entity.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode conversation state: %w", err)
	}
	return &state, nil
}
