package timeline

import (
	"github.com/banshee-data/motion.review/internal/session"
)

// DataController owns the IMU scrub control. Scrub requests are snapped to
// the nearest sample at-or-after the requested time and drive the chart
// updater directly: the data timeline is authoritative over itself, so no
// offset translation happens on this path.
type DataController struct {
	sess     *session.Session
	line     Timeline
	renderer Renderer

	control Control
	inputID int
	bound   bool

	// onManualScrub fires before a user-initiated scrub is applied; the
	// playback driver hooks it so manual interaction always wins over
	// automatic playback.
	onManualScrub func()
}

// NewDataController creates a controller over the session's data timeline.
func NewDataController(sess *session.Session, renderer Renderer) *DataController {
	return &DataController{sess: sess, renderer: renderer}
}

// Timeline exposes the data playhead (read-only use by callers).
func (c *DataController) Timeline() *Timeline { return &c.line }

// SetManualScrubHook registers the callback fired on user scrubs.
func (c *DataController) SetManualScrubHook(fn func()) { c.onManualScrub = fn }

// Bind attaches the controller to a scrub control, first removing any
// handler from a previous Bind. Called again after every dataset load, so
// it must be idempotent.
func (c *DataController) Bind(ctl Control) {
	c.Unbind()
	c.control = ctl
	c.inputID = ctl.AddInput(func(v float64) {
		if c.onManualScrub != nil {
			c.onManualScrub()
		}
		c.ScrubTo(v)
	})
	ctl.SetRange(0, c.sess.Series.Duration())
	c.line.SetDuration(c.sess.Series.Duration())
	c.bound = true
}

// Unbind removes the registered input handler, if any.
func (c *DataController) Unbind() {
	if c.bound && c.control != nil {
		c.control.RemoveInput(c.inputID)
	}
	c.bound = false
}

// ScrubTo snaps the requested time to the sample grid, moves the data
// playhead, and re-renders the chart window at the snapped time. Returns
// the snapped time. With no dataset loaded it leaves everything untouched
// and returns 0.
func (c *DataController) ScrubTo(requested float64) float64 {
	series := c.sess.Series
	if series.Len() == 0 {
		return 0
	}
	snapped := series.SnapTime(requested)
	c.line.SetDuration(series.Duration())
	c.line.setCurrent(snapped)
	if c.control != nil {
		c.control.SetValue(snapped)
	}
	if c.renderer != nil {
		c.renderer.Render(snapped)
	}
	return snapped
}

// Duration returns the loaded dataset's duration, 0 with no dataset.
func (c *DataController) Duration() float64 {
	return c.sess.Series.Duration()
}

// StepSize returns the scrub step for back/forward playback controls: the
// bound control's granularity floored at a usable minimum.
func (c *DataController) StepSize() float64 {
	const minStep = 0.01
	if c.control == nil || c.control.Step() < minStep {
		return minStep
	}
	return c.control.Step()
}
