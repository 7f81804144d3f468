// Package chart computes the visible time window around a playhead and keeps
// the three channel-group charts and their marker overlays in sync with it.
// Windowing is a view-bounds operation: every chart always holds the full
// point set and only the visible x-range moves, which is far cheaper than
// re-slicing data on every frame at this scale.
package chart

// WindowWidth is the fixed visible window width in seconds.
const WindowWidth = 5.0

// Window returns the visible time range for a reference time t:
// [max(0, t-W/2), t+W/2].
func Window(t float64) (start, end float64) {
	start = t - WindowWidth/2
	if start < 0 {
		start = 0
	}
	return start, t + WindowWidth/2
}

// MarkerPercent positions the playhead marker inside the window as a
// percentage of the window width, clamped to [0, 100].
func MarkerPercent(t, start, end float64) float64 {
	if end <= start {
		return 0
	}
	p := (t - start) / (end - start) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
