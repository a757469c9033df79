package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelay(t *testing.T) {
	base := 2 * time.Second
	max := 5 * time.Minute

	tests := []struct {
		name       string
		retryCount int
		want       time.Duration
	}{
		{name: "no failures yet", retryCount: 0, want: 0},
		{name: "negative count", retryCount: -1, want: 0},
		{name: "first retry doubles the base", retryCount: 1, want: 4 * time.Second},
		{name: "second retry", retryCount: 2, want: 8 * time.Second},
		{name: "fifth retry", retryCount: 5, want: 64 * time.Second},
		{name: "capped at max", retryCount: 10, want: max},
		{name: "far past the cap", retryCount: 25, want: max},
		{name: "shift guard", retryCount: 63, want: max},
		{name: "absurd count", retryCount: 1 << 20, want: max},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, backoffDelay(base, max, tc.retryCount))
		})
	}
}

func TestBackoffDelay_OverflowReturnsMax(t *testing.T) {
	// A huge base overflows the shift into a negative duration; the cap
	// must still hold.
	got := backoffDelay(time.Duration(1)<<55, time.Minute, 20)
	assert.Equal(t, time.Minute, got)
}
