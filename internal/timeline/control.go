package timeline

// SliderControl is an in-process Control implementation backing the HTTP
// scrub endpoints (and the tests). It mirrors the behaviour of a range
// input: SetValue moves the thumb silently, Input simulates a user scrub.
type SliderControl struct {
	min, max float64
	value    float64
	step     float64

	nextID   int
	handlers map[int]func(float64)
}

// NewSliderControl creates a control with the given input granularity.
func NewSliderControl(step float64) *SliderControl {
	return &SliderControl{
		step:     step,
		handlers: make(map[int]func(float64)),
	}
}

// AddInput registers a scrub handler and returns its removal handle.
func (c *SliderControl) AddInput(fn func(value float64)) int {
	c.nextID++
	c.handlers[c.nextID] = fn
	return c.nextID
}

// RemoveInput deregisters a handler. Unknown ids are ignored.
func (c *SliderControl) RemoveInput(id int) {
	delete(c.handlers, id)
}

// SetRange sets the control bounds.
func (c *SliderControl) SetRange(min, max float64) {
	c.min, c.max = min, max
}

// SetValue moves the thumb without firing input handlers.
func (c *SliderControl) SetValue(v float64) {
	if v < c.min {
		v = c.min
	}
	if v > c.max {
		v = c.max
	}
	c.value = v
}

// Value returns the current thumb position.
func (c *SliderControl) Value() float64 { return c.value }

// Step returns the control granularity in seconds.
func (c *SliderControl) Step() float64 { return c.step }

// HandlerCount reports how many input handlers are registered. Used to
// verify the rebinding discipline.
func (c *SliderControl) HandlerCount() int { return len(c.handlers) }

// Input simulates a user scrub: clamps to the range, moves the thumb, and
// fires every registered handler.
func (c *SliderControl) Input(v float64) {
	c.SetValue(v)
	for _, fn := range c.handlers {
		fn(c.value)
	}
}
