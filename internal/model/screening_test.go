package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScreening_Overlaps(t *testing.T) {
	h := func(hour int) time.Time { return time.Date(2025, 1, 10, hour, 0, 0, 0, time.UTC) }
	s := Screening{StartTime: h(14), EndTime: h(16)}

	assert.True(t, s.Overlaps(h(15), h(17)))
	assert.True(t, s.Overlaps(h(13), h(15)))
	assert.True(t, s.Overlaps(h(14), h(16)))
	assert.True(t, s.Overlaps(h(12), h(18)))
	assert.False(t, s.Overlaps(h(16), h(18)), "intervals are half-open")
	assert.False(t, s.Overlaps(h(12), h(14)))
}
