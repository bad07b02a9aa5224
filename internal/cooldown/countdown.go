package cooldown

import (
	"fmt"
	"sync"
	"time"
)

// Countdown drives the one-second cooldown display. Starting a countdown
// cancels any previous one, which is what happens when the user switches
// identity mid-wait.
type Countdown struct {
	mu     sync.Mutex
	cancel chan struct{}
}

// Start emits the remaining duration once a second until it reaches zero,
// then closes the channel so the caller can hide the indicator. A lagging
// consumer misses ticks rather than blocking the timer.
func (c *Countdown) Start(remaining time.Duration) <-chan time.Duration {
	c.mu.Lock()
	if c.cancel != nil {
		close(c.cancel)
	}
	cancel := make(chan struct{})
	c.cancel = cancel
	c.mu.Unlock()

	out := make(chan time.Duration, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		left := remaining
		for left > 0 {
			select {
			case <-ticker.C:
				left -= time.Second
				if left <= 0 {
					return
				}
				select {
				case out <- left:
				default:
				}
			case <-cancel:
				return
			}
		}
	}()
	return out
}

// Stop tears down the running countdown, if any.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
}

// Format renders a remaining duration as hh:mm:ss.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
