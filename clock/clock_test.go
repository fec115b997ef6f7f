package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewFixed(at)

	assert.Equal(t, at, c.Now())
	assert.Equal(t, at, c.Now())
}

func TestSystemMovesForward(t *testing.T) {
	c := NewSystem()
	first := c.Now()

	assert.False(t, c.Now().Before(first))
}

func TestManual(t *testing.T) {
	at := time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)
	c := NewManual(at)

	assert.Equal(t, time.Date(2024, 2, 2, 12, 0, 0, 0, time.UTC), c.AdvanceDays(3))
	assert.Equal(t, time.Date(2024, 2, 2, 12, 0, 0, 0, time.UTC), c.Now())

	c.Set(at)
	assert.Equal(t, at, c.Now())
}
