package timeline

import (
	"math"

	"github.com/banshee-data/motion.review/internal/session"
)

// DefaultStepRateHz is the discretization rate for the video step counter,
// matching the pose-estimation frame cadence.
const DefaultStepRateHz = 30.0

// VideoController owns the video scrub control and the discretized step
// counter displayed next to the raw time. Scrubs are clamped to the video
// duration; the chart updater is driven with the request translated into
// data-timeline coordinates through the sync offset. This is the only
// cross-timeline path, and it is one-way: the data playhead itself is never
// moved from here.
type VideoController struct {
	sess     *session.Session
	line     Timeline
	renderer Renderer
	stepRate float64

	control Control
	inputID int
	bound   bool
}

// NewVideoController creates a controller over the session's video timeline.
func NewVideoController(sess *session.Session, renderer Renderer) *VideoController {
	return &VideoController{sess: sess, renderer: renderer, stepRate: DefaultStepRateHz}
}

// Timeline exposes the video playhead.
func (c *VideoController) Timeline() *Timeline { return &c.line }

// SetDuration sets the video duration, normally from media metadata.
func (c *VideoController) SetDuration(d float64) {
	c.line.SetDuration(d)
	if c.control != nil {
		c.control.SetRange(0, c.line.Duration())
	}
}

// Bind attaches the controller to a scrub control, removing any previously
// registered handler first.
func (c *VideoController) Bind(ctl Control) {
	c.Unbind()
	c.control = ctl
	c.inputID = ctl.AddInput(func(v float64) { c.ScrubTo(v) })
	ctl.SetRange(0, c.line.Duration())
	c.bound = true
}

// Unbind removes the registered input handler, if any.
func (c *VideoController) Unbind() {
	if c.bound && c.control != nil {
		c.control.RemoveInput(c.inputID)
	}
	c.bound = false
}

// ScrubTo clamps the requested time to [0, duration], moves the video
// playhead, and re-renders the chart window at requested - offset. Returns
// the clamped time.
func (c *VideoController) ScrubTo(requested float64) float64 {
	c.line.setCurrent(requested)
	t := c.line.Current()
	if c.control != nil {
		c.control.SetValue(t)
	}
	if c.renderer != nil {
		c.renderer.Render(c.sess.Sync.DataTime(t))
	}
	return t
}

// Step returns the discretized step index for the current playhead:
// round(time x stepRate), clamped to [0, TotalSteps].
func (c *VideoController) Step() int {
	step := int(math.Round(c.line.Current() * c.stepRate))
	if step < 0 {
		step = 0
	}
	if total := c.TotalSteps(); step > total {
		step = total
	}
	return step
}

// TotalSteps returns the step count for the full video duration.
func (c *VideoController) TotalSteps() int {
	return int(math.Round(c.line.Duration() * c.stepRate))
}
