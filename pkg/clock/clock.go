package clock

import (
	"sync"
	"time"
)

// Clock supplies "now". Everything that reads wall-clock time takes one of these.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock in UTC, truncated to whole seconds so a
// stored DATETIME reads back as the same instant.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC().Truncate(time.Second) }

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{t: t.UTC()} }

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t.UTC()
	f.mu.Unlock()
}

// AddDays moves the clock forward by n civil days.
func (f *Fixed) AddDays(n int) {
	f.mu.Lock()
	f.t = f.t.AddDate(0, 0, n)
	f.mu.Unlock()
}
