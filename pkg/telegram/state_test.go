package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateManagerSetGetClear(t *testing.T) {
	sm := NewStateManager(time.Minute)

	assert.Nil(t, sm.Get(1))

	sm.Set(1, PendingDeleteSelection, 100)
	prompt := sm.Get(1)
	require.NotNil(t, prompt)
	assert.Equal(t, PendingDeleteSelection, prompt.Kind)
	assert.Equal(t, 100, prompt.MessageID)

	// replacing keeps only the latest prompt
	sm.Set(1, PendingDeleteSelection, 200)
	prompt = sm.Get(1)
	require.NotNil(t, prompt)
	assert.Equal(t, 200, prompt.MessageID)

	sm.Clear(1)
	assert.Nil(t, sm.Get(1))
}

func TestStateManagerExpiry(t *testing.T) {
	sm := NewStateManager(10 * time.Millisecond)

	sm.Set(1, PendingDeleteSelection, 100)
	time.Sleep(20 * time.Millisecond)

	assert.Nil(t, sm.Get(1), "expired prompts are dropped on read")
}

func TestStateManagerCollectExpired(t *testing.T) {
	sm := NewStateManager(time.Minute)

	sm.Set(1, PendingDeleteSelection, 100)
	sm.Set(2, PendingDeleteSelection, 200)

	assert.Empty(t, sm.CollectExpired(time.Now()))

	expired := sm.CollectExpired(time.Now().Add(2 * time.Minute))
	assert.Len(t, expired, 2)

	// collected prompts are gone
	assert.Nil(t, sm.Get(1))
	assert.Nil(t, sm.Get(2))
	assert.Empty(t, sm.CollectExpired(time.Now().Add(2*time.Minute)))
}
