package chart

// Surface is the narrow interface the updater needs from one chart: set
// series data, move the visible x-range, redraw. Production code backs it
// with MemorySurface (whose state the UI polls); tests substitute their own
// fakes.
type Surface interface {
	SetSeries(name string, xs, ys []float64)
	SetVisibleRange(min, max float64)
	Redraw()
}

// Marker is a playhead overlay positioned as a percentage of the window.
type Marker interface {
	SetPercent(p float64)
}

// MemorySurface is an in-memory Surface capturing the state a browser chart
// object would hold. The chart state endpoint serializes it for the UI.
type MemorySurface struct {
	Series     map[string][][2]float64 `json:"series"`
	RangeMin   float64                 `json:"range_min"`
	RangeMax   float64                 `json:"range_max"`
	RedrawSeen int                     `json:"redraws"`
}

// NewMemorySurface creates an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{Series: make(map[string][][2]float64)}
}

// SetSeries replaces the named series with the full point set.
func (m *MemorySurface) SetSeries(name string, xs, ys []float64) {
	points := make([][2]float64, len(xs))
	for i := range xs {
		points[i] = [2]float64{xs[i], ys[i]}
	}
	m.Series[name] = points
}

// SetVisibleRange moves the visible x-axis bounds.
func (m *MemorySurface) SetVisibleRange(min, max float64) {
	m.RangeMin, m.RangeMax = min, max
}

// Redraw counts redraw requests.
func (m *MemorySurface) Redraw() { m.RedrawSeen++ }

// MemoryMarker is an in-memory Marker overlay.
type MemoryMarker struct {
	Percent float64 `json:"percent"`
}

// SetPercent positions the marker.
func (m *MemoryMarker) SetPercent(p float64) { m.Percent = p }
