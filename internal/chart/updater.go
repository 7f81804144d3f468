package chart

import (
	"github.com/banshee-data/motion.review/internal/imu"
	"github.com/banshee-data/motion.review/internal/session"
)

// Group names one chart and the three channels it plots.
type Group struct {
	Name     string
	Channels [3]string
}

// Groups is the fixed chart layout: one chart per sensor modality.
var Groups = []Group{
	{Name: "accelerometer", Channels: [3]string{"ax", "ay", "az"}},
	{Name: "gyroscope", Channels: [3]string{"gx", "gy", "gz"}},
	{Name: "magnetometer", Channels: [3]string{"mx", "my", "mz"}},
}

// GroupByName looks up a chart group by its name.
func GroupByName(name string) (Group, bool) {
	for _, g := range Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Updater recomputes the visible window and marker position whenever either
// timeline supplies a new reference time. Render is hit continuously from
// the render loop, so missing data or missing surfaces are silent no-ops,
// never errors.
type Updater struct {
	sess     *session.Session
	surfaces map[string]Surface
	markers  []Marker

	// loadedSeries tracks which series the surfaces were last populated
	// from; the full point set is only re-pushed when the dataset is
	// replaced wholesale.
	loadedSeries *imu.Series
}

// NewUpdater creates an updater over the session's series.
func NewUpdater(sess *session.Session) *Updater {
	return &Updater{
		sess:     sess,
		surfaces: make(map[string]Surface),
	}
}

// SetSurface binds the chart surface for a group name, replacing any prior
// binding.
func (u *Updater) SetSurface(group string, s Surface) {
	u.surfaces[group] = s
	u.loadedSeries = nil
}

// AddMarker registers a marker overlay.
func (u *Updater) AddMarker(m Marker) {
	u.markers = append(u.markers, m)
}

// Reset forgets the populated dataset so the next Render re-pushes series
// data. Called after a dataset load.
func (u *Updater) Reset() {
	u.loadedSeries = nil
}

// Render computes the window for the reference time, updates every bound
// group chart, and repositions the markers.
func (u *Updater) Render(referenceTime float64) {
	series := u.sess.Series
	if series.Len() == 0 || len(u.surfaces) == 0 {
		return
	}

	start, end := Window(referenceTime)

	for _, g := range Groups {
		surface, ok := u.surfaces[g.Name]
		if !ok {
			continue
		}
		if u.loadedSeries != series {
			for _, ch := range g.Channels {
				surface.SetSeries(ch, series.Times, series.Channel(ch))
			}
		}
		surface.SetVisibleRange(start, end)
		surface.Redraw()
	}
	u.loadedSeries = series

	p := MarkerPercent(referenceTime, start, end)
	for _, m := range u.markers {
		m.SetPercent(p)
	}
}
