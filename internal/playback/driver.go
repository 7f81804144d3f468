package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/banshee-data/motion.review/internal/timeline"
)

// State is the driver's playback state.
type State int

const (
	// Stopped means no ticks are being consumed.
	Stopped State = iota
	// Playing means each frame advances the data playhead.
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// ErrNotReady is returned by Play when no dataset with a positive duration
// is loaded. Callers surface it as a disabled control.
var ErrNotReady = errors.New("playback requires a loaded dataset with positive duration")

// enablePollTicks bounds the post-load enablement polling: dataset
// availability can change asynchronously (imports finish outside this
// component's notification), so enablement is re-checked for a short,
// bounded number of frames rather than forever.
const enablePollTicks = 120

// Driver advances the data playhead at a selectable rate on scheduler
// frames. It owns a running flag checked at tick entry, which is what makes
// cancellation work: pausing or switching datasets flips the flag, and any
// tick already in flight sees it and discards itself instead of applying a
// stale time.
//
// The driver is not internally synchronized beyond the supplied locker:
// every entry point, including scheduler callbacks, serializes through it,
// matching the single-threaded cooperative model of the review core.
type Driver struct {
	sched Scheduler
	data  *timeline.DataController
	lock  sync.Locker

	state   State
	rate    float64
	enabled bool

	tickHandle TickHandle
	lastTick   time.Time

	pollHandle    TickHandle
	pollRemaining int
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// NewDriver creates a driver over the data controller. lock serializes tick
// callbacks with the caller's other session access; nil means no locking
// (single-goroutine tests). Manual scrubs of the data control implicitly
// pause playback.
func NewDriver(sched Scheduler, data *timeline.DataController, lock sync.Locker) *Driver {
	if lock == nil {
		lock = noopLocker{}
	}
	d := &Driver{
		sched: sched,
		data:  data,
		lock:  lock,
		rate:  1,
	}
	data.SetManualScrubHook(d.pauseLocked)
	return d
}

// State returns the current playback state.
func (d *Driver) State() State { return d.state }

// Rate returns the playback rate multiplier.
func (d *Driver) Rate() float64 { return d.rate }

// SetRate sets the playback rate. Non-positive rates are ignored.
func (d *Driver) SetRate(r float64) {
	if r > 0 {
		d.rate = r
	}
}

// Enabled reports whether playback controls are usable.
func (d *Driver) Enabled() bool {
	return d.data.Duration() > 0
}

// Play transitions to Playing and begins consuming ticks. Fails with
// ErrNotReady when no dataset with positive duration is loaded. Calling
// Play while already playing is a no-op.
func (d *Driver) Play() error {
	if !d.Enabled() {
		return ErrNotReady
	}
	if d.state == Playing {
		return nil
	}
	d.state = Playing
	d.lastTick = time.Time{}
	d.tickHandle = d.sched.RequestTick(d.tick)
	return nil
}

// Pause transitions to Stopped. Idempotent.
func (d *Driver) Pause() {
	d.pauseLocked()
}

// pauseLocked is the lock-free pause body, also invoked from the manual
// scrub hook (which fires with the session lock already held).
func (d *Driver) pauseLocked() {
	if d.state == Stopped {
		return
	}
	d.state = Stopped
	d.sched.CancelTick(d.tickHandle)
}

// Back pauses, then scrubs one step backwards.
func (d *Driver) Back() {
	d.pauseLocked()
	d.data.ScrubTo(d.data.Timeline().Current() - d.data.StepSize())
}

// Forward pauses, then scrubs one step forwards.
func (d *Driver) Forward() {
	d.pauseLocked()
	d.data.ScrubTo(d.data.Timeline().Current() + d.data.StepSize())
}

// tick is the per-frame callback while Playing.
func (d *Driver) tick(now time.Time) {
	d.lock.Lock()
	defer d.lock.Unlock()

	// Gate on the running flag: a tick that was already queued when Pause
	// ran must not apply a stale time.
	if d.state != Playing {
		return
	}

	if d.lastTick.IsZero() {
		d.lastTick = now
		d.tickHandle = d.sched.RequestTick(d.tick)
		return
	}

	elapsed := now.Sub(d.lastTick).Seconds()
	d.lastTick = now

	next := d.data.Timeline().Current() + elapsed*d.rate
	duration := d.data.Duration()
	if next >= duration {
		// Terminal condition: pin exactly at the end and stop.
		d.state = Stopped
		d.data.ScrubTo(duration)
		return
	}

	d.data.ScrubTo(next)
	d.tickHandle = d.sched.RequestTick(d.tick)
}

// RefreshEnablement re-checks playback enablement, polling for a bounded
// number of frames when the dataset is not ready yet. Called after every
// dataset load, including asynchronous imports.
func (d *Driver) RefreshEnablement() {
	if d.pollRemaining > 0 {
		d.sched.CancelTick(d.pollHandle)
		d.pollRemaining = 0
	}
	d.enabled = d.Enabled()
	if d.enabled {
		return
	}
	d.pollRemaining = enablePollTicks
	d.pollHandle = d.sched.RequestTick(d.pollTick)
}

func (d *Driver) pollTick(time.Time) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.pollRemaining <= 0 {
		return
	}
	d.pollRemaining--
	if d.Enabled() {
		d.enabled = true
		d.pollRemaining = 0
		return
	}
	if d.pollRemaining > 0 {
		d.pollHandle = d.sched.RequestTick(d.pollTick)
	}
}
