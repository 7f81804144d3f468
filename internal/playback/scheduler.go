// Package playback advances the data playhead at a chosen rate using
// cooperative per-frame ticks, independent of video playback.
package playback

import (
	"context"
	"sync"
	"time"
)

// TickHandle identifies one pending tick request.
type TickHandle int

// Scheduler delivers one-shot per-frame callbacks. It is the reframing of a
// display-refresh callback loop: a callback runs at most once, on the next
// frame, unless cancelled first. Consumers that want continuous ticking
// re-request from inside their callback.
type Scheduler interface {
	RequestTick(fn func(now time.Time)) TickHandle
	CancelTick(h TickHandle)
}

// FrameScheduler is the production Scheduler: a single goroutine fires
// pending callbacks at a fixed frame interval, so all callbacks are
// serialized on one loop.
type FrameScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	nextID  TickHandle
	pending map[TickHandle]func(time.Time)
}

// NewFrameScheduler creates a scheduler firing every interval.
func NewFrameScheduler(interval time.Duration) *FrameScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &FrameScheduler{
		interval: interval,
		pending:  make(map[TickHandle]func(time.Time)),
	}
}

// RequestTick schedules fn for the next frame and returns its handle.
func (s *FrameScheduler) RequestTick(fn func(now time.Time)) TickHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.pending[s.nextID] = fn
	return s.nextID
}

// CancelTick drops a pending callback. Unknown or already-fired handles are
// ignored.
func (s *FrameScheduler) CancelTick(h TickHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, h)
}

// Run fires pending callbacks once per frame until the context is
// cancelled. Callbacks registered during a frame run on the next one.
func (s *FrameScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.fire(now)
		}
	}
}

func (s *FrameScheduler) fire(now time.Time) {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[TickHandle]func(time.Time))
	s.mu.Unlock()

	for _, fn := range batch {
		fn(now)
	}
}

// ManualScheduler is a test Scheduler driven by explicit Advance calls.
type ManualScheduler struct {
	nextID  TickHandle
	pending map[TickHandle]func(time.Time)
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[TickHandle]func(time.Time))}
}

// RequestTick schedules fn for the next Advance.
func (s *ManualScheduler) RequestTick(fn func(now time.Time)) TickHandle {
	s.nextID++
	s.pending[s.nextID] = fn
	return s.nextID
}

// CancelTick drops a pending callback.
func (s *ManualScheduler) CancelTick(h TickHandle) {
	delete(s.pending, h)
}

// Pending reports how many callbacks await the next frame.
func (s *ManualScheduler) Pending() int { return len(s.pending) }

// Advance fires all pending callbacks with the given frame time.
func (s *ManualScheduler) Advance(now time.Time) {
	batch := s.pending
	s.pending = make(map[TickHandle]func(time.Time))
	for _, fn := range batch {
		fn(now)
	}
}
