package recibo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTargetIndex(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name     string
		length   int
		position *int
		wantIdx  int
		wantOK   bool
	}{
		{"empty list", 0, nil, 0, false},
		{"empty list with position", 0, intPtr(1), 0, false},
		{"nil means last", 3, nil, 2, true},
		{"first position", 3, intPtr(1), 0, true},
		{"last position", 3, intPtr(3), 2, true},
		{"zero is out of range", 3, intPtr(0), 0, false},
		{"past the end", 3, intPtr(4), 0, false},
		{"negative", 3, intPtr(-1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := targetIndex(tt.length, tt.position)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIdx, idx)
			}
		})
	}
}

func TestMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	assert.NoError(t, err)

	in := time.Date(2026, 8, 29, 23, 59, 59, 0, loc)
	got := midnight(in)

	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())

	// already at midnight stays put
	assert.Equal(t, got, midnight(got))
}
