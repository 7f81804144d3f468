package device

import (
	"strings"
	"sync"

	"github.com/banshee-data/motion.review/internal/imu"
)

// Recorder accumulates streamed sample lines into CSV text matching the
// upload format, so a live recording can be loaded into a session exactly
// like a file upload. Safe for use from the subscriber goroutine.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append adds one streamed line. Device status lines (prefixed '#') and
// blank lines are ignored; everything else is taken as a sample row.
func (r *Recorder) Append(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

// Count returns the number of recorded sample rows.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

// Reset discards all recorded rows.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}

// CSV renders the recording in the upload format: canonical header plus
// one row per sample.
func (r *Recorder) CSV() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	b.WriteString(strings.Join(imu.ChannelNames, ","))
	b.WriteByte('\n')
	for _, line := range r.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
