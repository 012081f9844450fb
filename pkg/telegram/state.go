package telegram

import (
	"sync"
	"time"
)

// PendingKind identifies an outstanding interactive prompt.
type PendingKind string

const (
	PendingDeleteSelection PendingKind = "delete_selection"
)

// PendingPrompt is an interactive message awaiting a callback answer. It
// expires after a TTL; expiry is advisory UI cleanup, not correctness.
type PendingPrompt struct {
	Kind      PendingKind
	MessageID int
	ExpiresAt time.Time
}

// ExpiredPrompt is returned by CollectExpired so the bot can best-effort
// delete the stale message.
type ExpiredPrompt struct {
	ChatID    int64
	MessageID int
}

// StateManager tracks pending interactive prompts per chat.
type StateManager struct {
	mu      sync.RWMutex
	ttl     time.Duration
	prompts map[int64]*PendingPrompt
}

// NewStateManager creates a new state manager with the given prompt TTL.
func NewStateManager(ttl time.Duration) *StateManager {
	return &StateManager{
		ttl:     ttl,
		prompts: make(map[int64]*PendingPrompt),
	}
}

// Set registers a pending prompt for a chat, replacing any previous one.
func (sm *StateManager) Set(chatID int64, kind PendingKind, messageID int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.prompts[chatID] = &PendingPrompt{
		Kind:      kind,
		MessageID: messageID,
		ExpiresAt: time.Now().Add(sm.ttl),
	}
}

// Get returns the pending prompt for a chat, or nil when there is none or
// it has expired (expired entries are dropped on read).
func (sm *StateManager) Get(chatID int64) *PendingPrompt {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	prompt, exists := sm.prompts[chatID]
	if !exists {
		return nil
	}
	if time.Now().After(prompt.ExpiresAt) {
		delete(sm.prompts, chatID)
		return nil
	}
	return prompt
}

// Clear removes the pending prompt for a chat.
func (sm *StateManager) Clear(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.prompts, chatID)
}

// CollectExpired removes and returns all prompts expired at `now`.
func (sm *StateManager) CollectExpired(now time.Time) []ExpiredPrompt {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var expired []ExpiredPrompt
	for chatID, prompt := range sm.prompts {
		if now.After(prompt.ExpiresAt) {
			expired = append(expired, ExpiredPrompt{ChatID: chatID, MessageID: prompt.MessageID})
			delete(sm.prompts, chatID)
		}
	}
	return expired
}
