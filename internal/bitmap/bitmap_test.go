package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		n         int
		wantWords int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{64, 1},
		{65, 2},
		{150_000_000, (150_000_000 + 63) / 64},
	}
	for _, tt := range tests {
		b := New(tt.n)
		assert.Len(t, b.data, tt.wantWords, "n=%d", tt.n)
		assert.Equal(t, max(tt.n, 0), b.Len())
		assert.Zero(t, b.Count())
	}
}

func TestAddHas(t *testing.T) {
	b := New(130)
	for _, pos := range []int{0, 1, 63, 64, 127, 129} {
		b.Add(pos)
	}
	for _, pos := range []int{0, 1, 63, 64, 127, 129} {
		assert.True(t, b.Has(pos), pos)
	}
	for _, pos := range []int{2, 62, 65, 128} {
		assert.False(t, b.Has(pos), pos)
	}
	assert.Equal(t, 6, b.Count())

	// idempotent
	b.Add(64)
	assert.Equal(t, 6, b.Count())
}

func TestOutOfRange(t *testing.T) {
	b := New(64)
	b.Add(-1)
	b.Add(64)
	b.Add(1 << 20)
	assert.Zero(t, b.Count())
	assert.False(t, b.Has(-1))
	assert.False(t, b.Has(64))

	empty := New(0)
	empty.Add(0)
	assert.False(t, empty.Has(0))
}
