package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	in := time.Date(2025, 6, 1, 23, 59, 59, 123456789, time.FixedZone("UTC+2", 2*3600))

	got := Normalize(in)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123456000, got.Nanosecond())
	assert.Equal(t, 21, got.Hour())
}

func TestFunc(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 999, time.UTC)
	c := Func(func() time.Time { return fixed })

	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), c.Now())
	assert.Equal(t, time.UTC, SystemClock{}.Now().Location())
}
