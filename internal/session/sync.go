package session

import "errors"

// ErrMarksIncomplete is returned by Apply when one or both mark candidates
// are missing. Callers treat it as a disabled control, not a fault.
var ErrMarksIncomplete = errors.New("both timelines must be marked before applying sync")

// SyncState holds the offset relation between the video and data timelines
// and the two mark candidates used to compute it. The relation is
//
//	dataTime = videoTime - offset
//
// The offset changes only through Apply; nothing re-synchronizes
// automatically.
type SyncState struct {
	offset    float64
	videoMark *float64
	dataMark  *float64
}

// Offset returns the current sync offset in seconds. Zero until the first
// successful Apply.
func (s *SyncState) Offset() float64 { return s.offset }

// MarkVideo records the video-side candidate time, replacing any prior mark.
func (s *SyncState) MarkVideo(t float64) {
	s.videoMark = &t
}

// MarkData records the data-side candidate time, replacing any prior mark.
func (s *SyncState) MarkData(t float64) {
	s.dataMark = &t
}

// Marks reports the current candidates; a nil pointer means unset.
func (s *SyncState) Marks() (video, data *float64) {
	return s.videoMark, s.dataMark
}

// CanApply reports whether both mark candidates are set.
func (s *SyncState) CanApply() bool {
	return s.videoMark != nil && s.dataMark != nil
}

// Apply computes offset = videoMark - dataMark and clears both candidates.
// With an incomplete pair it changes nothing and returns ErrMarksIncomplete.
func (s *SyncState) Apply() error {
	if !s.CanApply() {
		return ErrMarksIncomplete
	}
	s.offset = *s.videoMark - *s.dataMark
	s.videoMark = nil
	s.dataMark = nil
	return nil
}

// Restore sets the offset directly without touching the mark candidates.
// Used when loading a persisted project.
func (s *SyncState) Restore(offset float64) {
	s.offset = offset
}

// DataTime translates a video-timeline time into data-timeline coordinates.
func (s *SyncState) DataTime(videoTime float64) float64 {
	return videoTime - s.offset
}
