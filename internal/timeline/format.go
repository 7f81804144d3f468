package timeline

import (
	"fmt"
	"math"
)

// FormatSeconds renders a time in seconds as M:SS.mmm for display next to
// the scrub controls. Negative inputs are treated as zero.
func FormatSeconds(s float64) string {
	if s < 0 || math.IsNaN(s) {
		s = 0
	}
	minutes := int(s) / 60
	seconds := s - float64(minutes*60)
	return fmt.Sprintf("%d:%06.3f", minutes, seconds)
}
