package session

import (
	"math"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/pkg/utils"
)

const (
	MaxKeyTopics       = 10
	MaxWindowMessages  = 10
	maxUserIntentRunes = 100
	maxResponseRunes   = 200

	// reconstructedWindow is how many trailing messages seed a rebuilt context.
	reconstructedWindow = 5

	defaultContinuationMinutes = 5
)

// ContextUpdate is a partial context. Nil fields are left untouched.
type ContextUpdate struct {
	PersonaType         *string                 `json:"persona_type"`
	DocumentIds         []string                `json:"document_ids"`
	LastUserIntent      *string                 `json:"last_user_intent"`
	ConversationSummary *string                 `json:"conversation_summary"`
	KeyTopics           []string                `json:"key_topics"`
	LastResponse        *string                 `json:"last_response"`
	Preferences         *entity.UserPreferences `json:"user_preferences"`
}

func (u ContextUpdate) apply(c *entity.ConversationContext) {
	if u.PersonaType != nil {
		c.PersonaType = *u.PersonaType
	}
	if u.DocumentIds != nil {
		c.DocumentIds = append([]string(nil), u.DocumentIds...)
	}
	if u.LastUserIntent != nil {
		c.LastUserIntent = utils.Truncate(*u.LastUserIntent, maxUserIntentRunes)
	}
	if u.ConversationSummary != nil {
		c.ConversationSummary = *u.ConversationSummary
	}
	if u.KeyTopics != nil {
		c.KeyTopics = mergeTopics(nil, u.KeyTopics)
	}
	if u.LastResponse != nil {
		c.LastResponse = utils.Truncate(*u.LastResponse, maxResponseRunes)
	}
	if u.Preferences != nil {
		c.Preferences = *u.Preferences
	}
}

func newContext(personaType string, documentIDs []string) *entity.ConversationContext {
	return &entity.ConversationContext{
		PersonaType:        personaType,
		DocumentIds:        append([]string{}, documentIDs...),
		KeyTopics:          []string{},
		ConversationWindow: []entity.Message{},
		Preferences:        entity.DefaultUserPreferences(),
	}
}

// mergeTopics appends unseen topics in order and keeps the newest MaxKeyTopics.
func mergeTopics(existing []string, found []string) []string {
	out := append([]string{}, existing...)
	seen := make(map[string]struct{}, len(out))
	for _, t := range out {
		seen[t] = struct{}{}
	}
	for _, t := range found {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > MaxKeyTopics {
		out = out[len(out)-MaxKeyTopics:]
	}
	return out
}

func topicNames(topics []Topic) []string {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = string(t)
	}
	return names
}

func appendToWindow(window []entity.Message, msg entity.Message) []entity.Message {
	out := append(append([]entity.Message{}, window...), msg)
	if len(out) > MaxWindowMessages {
		out = out[len(out)-MaxWindowMessages:]
	}
	return out
}

// applyMessage folds one message into the running context.
func applyMessage(c *entity.ConversationContext, msg entity.Message, classifier TopicClassifier) {
	c.ConversationWindow = appendToWindow(c.ConversationWindow, msg)

	switch msg.Role {
	case entity.MessageRoleAssistant:
		c.LastResponse = utils.Truncate(msg.Content, maxResponseRunes)
	case entity.MessageRoleUser:
		c.LastUserIntent = utils.Truncate(msg.Content, maxUserIntentRunes)
	}

	c.KeyTopics = mergeTopics(c.KeyTopics, topicNames(classifier.Classify(msg.Content)))
}

// reconstructContext rebuilds a context from stored history.
func reconstructContext(conv *entity.Conversation, classifier TopicClassifier) *entity.ConversationContext {
	c := newContext(conv.PersonaType, conv.DocumentIds)

	for _, msg := range conv.Messages {
		c.KeyTopics = mergeTopics(c.KeyTopics, topicNames(classifier.Classify(msg.Content)))
	}

	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == entity.MessageRoleUser {
			c.LastUserIntent = utils.Truncate(conv.Messages[i].Content, maxUserIntentRunes)
			break
		}
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == entity.MessageRoleAssistant {
			c.LastResponse = utils.Truncate(conv.Messages[i].Content, maxResponseRunes)
			break
		}
	}

	start := len(conv.Messages) - reconstructedWindow
	if start < 0 {
		start = 0
	}
	c.ConversationWindow = append([]entity.Message{}, conv.Messages[start:]...)

	return c
}

// ResumePoint returns the id of the assistant reply in the latest (user, assistant)
// pair, else the last message id, else "".
func ResumePoint(messages []entity.Message) string {
	for i := len(messages) - 1; i >= 1; i-- {
		if messages[i].Role == entity.MessageRoleAssistant && messages[i-1].Role == entity.MessageRoleUser {
			return messages[i].Id
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Id
	}
	return ""
}

func buildSessionInfo(conv *entity.Conversation, prior []*entity.ConversationSession) entity.SessionInfo {
	info := entity.SessionInfo{
		PreviousSessions:             len(prior),
		EstimatedContinuationMinutes: defaultContinuationMinutes,
	}

	var total int64
	for _, s := range prior {
		last := s.SessionStart
		if s.SessionEnd != nil {
			last = *s.SessionEnd
		}
		if last.After(info.LastActiveAt) {
			info.LastActiveAt = last
		}
		total += s.TotalActiveTime
	}

	if info.LastActiveAt.IsZero() {
		info.LastActiveAt = conversationActivity(conv)
	}
	if len(prior) > 0 && total > 0 {
		meanMinutes := float64(total) / float64(len(prior)) / 60
		info.EstimatedContinuationMinutes = int(math.Ceil(meanMinutes))
	}
	return info
}

func conversationActivity(conv *entity.Conversation) time.Time {
	if conv.UpdatedAt != nil {
		return *conv.UpdatedAt
	}
	return conv.CreatedAt
}

func activeSeconds(start, now time.Time) int64 {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
