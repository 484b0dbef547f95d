package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingNumber(t *testing.T) {
	local := time.FixedZone("LKT", 5*3600+1800)
	now := time.Date(2025, 1, 10, 19, 30, 0, 0, local)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n, err := NewBookingNumber(now)
		require.NoError(t, err)
		assert.Regexp(t, bookingNumberRE, n)
		assert.Equal(t, "BK20250110140000-", n[:17], "timestamp is rendered in UTC")
		seen[n] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestRowLabel(t *testing.T) {
	cases := map[int]string{-1: "", 0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for i, want := range cases {
		assert.Equal(t, want, RowLabel(i), "RowLabel(%d)", i)
	}
}

func TestNormalizeRowLabel(t *testing.T) {
	assert.Equal(t, "AB", normalizeRowLabel(" a-b "))
	assert.Equal(t, "", normalizeRowLabel("12"))
}
