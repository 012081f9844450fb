package recibo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceRoundtrip(t *testing.T) {
	ref := FormatReference(123456789, PlanPro)
	assert.Equal(t, "123456789:pro", ref)

	chatID, plan, err := ParseReference(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), chatID)
	assert.Equal(t, PlanPro, plan)
}

func TestParseReferenceNegativeChatID(t *testing.T) {
	// group chats have negative ids
	chatID, plan, err := ParseReference("-100987654321:basico")
	require.NoError(t, err)
	assert.Equal(t, int64(-100987654321), chatID)
	assert.Equal(t, PlanBasico, plan)
}

func TestParseReferenceErrors(t *testing.T) {
	tests := []string{
		"",
		"no-separator",
		"abc:pro",
		"123:premium",
		"123:",
		"123:free", // free tier is not purchasable
	}

	for _, ref := range tests {
		_, _, err := ParseReference(ref)
		assert.Error(t, err, ref)
	}
}

func TestIdempotencyKey(t *testing.T) {
	at := time.Unix(1756400000, 0)

	key := idempotencyKey(42, PlanUltra, at)
	assert.Len(t, key, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", key)

	// stable within the same second
	assert.Equal(t, key, idempotencyKey(42, PlanUltra, at.Add(500*time.Millisecond)))

	// different inputs give different keys
	assert.NotEqual(t, key, idempotencyKey(43, PlanUltra, at))
	assert.NotEqual(t, key, idempotencyKey(42, PlanPro, at))
	assert.NotEqual(t, key, idempotencyKey(42, PlanUltra, at.Add(time.Second)))
}
