// Package session owns the mutable state of one review session: the loaded
// sample series, the sync relation between the two timelines, and the
// annotation list. The original review tool kept all of this in scattered
// globals; here it is a single object with an explicit lifecycle, created at
// startup, reset on each dataset or media change, shared read-only with
// everything that only renders.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/motion.review/internal/imu"
)

// Annotation is one timestep marker on the session timeline. Annotations are
// independent of the sync offset and survive project save/load.
type Annotation struct {
	Time     float64 `json:"time"`
	Label    string  `json:"label"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`
}

// MediaInfo identifies the loaded video file. Projects are persisted keyed
// by Name and Size.
type MediaInfo struct {
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	Duration float64 `json:"duration"`
}

// Session is the state of one review session. It is not internally
// synchronized; the API layer serializes all access, matching the
// single-threaded cooperative model of the review core.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	Series *imu.Series
	Media  MediaInfo
	Sync   SyncState
	Notes  string

	annotations []Annotation
}

// New creates an empty session.
func New() *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
	}
}

// LoadSeries replaces the sample series wholesale. Mark candidates and the
// offset survive a reload; controllers bound to the old series must be
// rebound by the caller.
func (s *Session) LoadSeries(series *imu.Series) {
	s.Series = series
}

// ClearSeries drops the loaded dataset, e.g. when switching modes.
func (s *Session) ClearSeries() {
	s.Series = nil
}

// MarkData records the data-side sync candidate. A nil time means "use the
// start of the dataset": it defaults to 0 when a series is loaded and is
// ignored otherwise, so Apply stays disabled until real marks exist.
func (s *Session) MarkData(t *float64) {
	if t == nil {
		if s.Series.Len() == 0 {
			return
		}
		zero := 0.0
		t = &zero
	}
	s.Sync.MarkData(*t)
}

// Annotations returns the ordered annotation list.
func (s *Session) Annotations() []Annotation {
	return s.annotations
}

// AddAnnotation appends a marker to the session.
func (s *Session) AddAnnotation(a Annotation) {
	s.annotations = append(s.annotations, a)
}

// DeleteAnnotation removes the annotation at index i.
func (s *Session) DeleteAnnotation(i int) error {
	if i < 0 || i >= len(s.annotations) {
		return fmt.Errorf("annotation index %d out of range (have %d)", i, len(s.annotations))
	}
	s.annotations = append(s.annotations[:i], s.annotations[i+1:]...)
	return nil
}

// RestoreAnnotations replaces the annotation list, used on project load.
func (s *Session) RestoreAnnotations(list []Annotation) {
	s.annotations = append([]Annotation(nil), list...)
}
