// Package timeline models the two independent playheads of a review session
// (video and data) and the controllers that own their scrub controls. The
// two timelines never mutate each other; translation between them happens
// only through the explicit sync offset, and only on the video->data path.
package timeline

// Timeline is one playhead: a current time bounded by a duration. Zero value
// is an empty timeline.
type Timeline struct {
	current  float64
	duration float64
}

// Current returns the playhead position in seconds.
func (t *Timeline) Current() float64 { return t.current }

// Duration returns the timeline length in seconds.
func (t *Timeline) Duration() float64 { return t.duration }

// SetDuration sets the timeline length and re-clamps the playhead.
func (t *Timeline) SetDuration(d float64) {
	if d < 0 {
		d = 0
	}
	t.duration = d
	t.setCurrent(t.current)
}

func (t *Timeline) setCurrent(v float64) {
	if v < 0 {
		v = 0
	}
	if v > t.duration {
		v = t.duration
	}
	t.current = v
}

// Control is the narrow surface a controller needs from a scrub input: a
// value range, an input-handler registry, and a way to reflect state back.
// The handler registry makes the remove-then-add rebinding discipline
// explicit so repeated dataset loads cannot leak duplicate handlers.
type Control interface {
	// AddInput registers a handler for user scrubs and returns a handle
	// for later removal.
	AddInput(fn func(value float64)) int
	// RemoveInput deregisters a previously added handler. Unknown handles
	// are ignored.
	RemoveInput(id int)
	// SetRange sets the control's min/max bounds.
	SetRange(min, max float64)
	// SetValue moves the control thumb without firing input handlers.
	SetValue(v float64)
	// Step returns the control's input granularity in seconds.
	Step() float64
}

// Renderer consumes an absolute data-timeline time and refreshes the chart
// view. Implemented by the windowed chart updater; controllers only ever
// call Render.
type Renderer interface {
	Render(referenceTime float64)
}
