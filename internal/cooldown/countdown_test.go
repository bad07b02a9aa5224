package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{90 * time.Second, "00:01:30"},
		{3 * time.Hour, "03:00:00"},
		{2*time.Hour + 59*time.Minute + 50*time.Second, "02:59:50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in))
	}
}

func awaitClosed(t *testing.T, ch <-chan time.Duration) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("countdown channel not closed")
		}
	}
}

func TestCountdown_StopClosesChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	var c Countdown
	ch := c.Start(time.Hour)
	c.Stop()
	awaitClosed(t, ch)
}

func TestCountdown_RestartCancelsPrevious(t *testing.T) {
	defer goleak.VerifyNone(t)

	var c Countdown
	first := c.Start(time.Hour)
	second := c.Start(time.Hour)

	// Starting for a new identity tears the old interval down.
	awaitClosed(t, first)

	c.Stop()
	awaitClosed(t, second)
}

func TestCountdown_RunsDownToZero(t *testing.T) {
	defer goleak.VerifyNone(t)

	var c Countdown
	ch := c.Start(1500 * time.Millisecond)

	var last time.Duration
	for left := range ch {
		require.Greater(t, left, time.Duration(0))
		last = left
	}
	// One tick at most before the channel closed at zero.
	assert.LessOrEqual(t, last, 500*time.Millisecond)
}
