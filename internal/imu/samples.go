// Package imu holds the parsed sensor dataset for a review session: samples,
// the derived time axis, and the channel vocabulary shared with the charts.
package imu

import (
	"fmt"
	"sort"
)

// DefaultSampleRateHz is the native rate of the Movesense IMU9 stream.
const DefaultSampleRateHz = 104.0

// ChannelNames is the canonical channel vocabulary. Uploads may carry extra
// headers; they are kept on the samples but only these are charted.
var ChannelNames = []string{"ax", "ay", "az", "gx", "gy", "gz", "mx", "my", "mz"}

// Sample is one parsed row of sensor data, keyed by channel name. Values are
// always finite; unparseable or non-finite cells are coerced to zero at parse
// time. A Sample is never mutated after parsing.
type Sample map[string]float64

// Series is an ordered sequence of samples plus the derived time axis,
// where Times[i] = i / Rate. A Series is replaced wholesale on each load and
// treated as read-only by all consumers.
type Series struct {
	Headers []string
	Samples []Sample
	Times   []float64
	Rate    float64
}

// Len returns the number of samples in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Samples)
}

// Duration returns the timestamp of the last sample, or 0 for an empty or
// nil series.
func (s *Series) Duration() float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.Times[len(s.Times)-1]
}

// SnapIndex returns the index of the first sample timestamp >= t. Requests
// past the end snap to the last sample; t <= 0 snaps to the first. The time
// axis is strictly non-decreasing so binary search applies.
func (s *Series) SnapIndex(t float64) int {
	if s.Len() == 0 {
		return 0
	}
	if t <= 0 {
		return 0
	}
	i := sort.SearchFloat64s(s.Times, t)
	if i >= len(s.Times) {
		return len(s.Times) - 1
	}
	return i
}

// SnapTime returns the sample timestamp nearest-at-or-after t per SnapIndex.
func (s *Series) SnapTime(t float64) float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.Times[s.SnapIndex(t)]
}

// Channel extracts one channel as a flat value slice aligned with Times.
// Unknown channel names yield all zeros, matching the lenient parse policy.
func (s *Series) Channel(name string) []float64 {
	out := make([]float64, s.Len())
	for i, sample := range s.Samples {
		out[i] = sample[name]
	}
	return out
}

// Validate checks the series invariants: equal-length samples and time axis,
// a positive rate, and a non-decreasing time axis.
func (s *Series) Validate() error {
	if s == nil {
		return fmt.Errorf("nil series")
	}
	if len(s.Samples) != len(s.Times) {
		return fmt.Errorf("sample/time length mismatch: %d vs %d", len(s.Samples), len(s.Times))
	}
	if s.Rate <= 0 {
		return fmt.Errorf("non-positive sample rate %g", s.Rate)
	}
	for i := 1; i < len(s.Times); i++ {
		if s.Times[i] < s.Times[i-1] {
			return fmt.Errorf("time axis decreases at index %d", i)
		}
	}
	return nil
}
