package cooldown

import (
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
)

// Duration is the mandatory minimum interval between an identity's
// consecutive successful order submissions.
const Duration = 3 * time.Hour

// Gate tracks each identity's last successful submission time, in memory and
// durably in a local pebble store so a restarted session resumes the correct
// remaining cooldown. Keys follow the `{identity}_lastOrder` convention, with
// the value an epoch-millisecond decimal string.
type Gate struct {
	db *pebble.DB

	// Now is the clock; override in tests.
	Now func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func Open(dir string) (*Gate, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Gate{db: db, Now: time.Now, last: make(map[string]time.Time)}, nil
}

func (g *Gate) Close() error { return g.db.Close() }

func key(identity string) []byte { return []byte(identity + "_lastOrder") }

// LastOrderAt returns the identity's last successful submission time,
// consulting the durable store on first access for that identity.
func (g *Gate) LastOrderAt(identity string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t, ok := g.last[identity]; ok {
		return t, true
	}

	// Any unreadable state counts as no prior order.
	v, closer, err := g.db.Get(key(identity))
	if err != nil {
		return time.Time{}, false
	}
	ms, perr := strconv.ParseInt(string(v), 10, 64)
	_ = closer.Close()
	if perr != nil {
		return time.Time{}, false
	}
	t := time.UnixMilli(ms)
	g.last[identity] = t
	return t, true
}

// Remaining reports how much of the cooldown is left for the identity. Zero
// means a submission is permitted.
func (g *Gate) Remaining(identity string) time.Duration {
	last, ok := g.LastOrderAt(identity)
	if !ok {
		return 0
	}
	left := Duration - g.Now().Sub(last)
	if left < 0 {
		return 0
	}
	return left
}

// Allow reports whether the identity may submit an order now.
func (g *Gate) Allow(identity string) bool { return g.Remaining(identity) == 0 }

// Record marks a successful submission at the current time, in memory and
// durably. Failed submissions must not call Record: they do not consume the
// cooldown.
func (g *Gate) Record(identity string) error {
	now := g.Now()

	g.mu.Lock()
	g.last[identity] = now
	g.mu.Unlock()

	val := strconv.FormatInt(now.UnixMilli(), 10)
	if err := g.db.Set(key(identity), []byte(val), pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}
