package timeline

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/banshee-data/motion.review/internal/imu"
	"github.com/banshee-data/motion.review/internal/session"
)

// recordingRenderer captures every reference time passed to Render.
type recordingRenderer struct {
	times []float64
}

func (r *recordingRenderer) Render(t float64) { r.times = append(r.times, t) }

func (r *recordingRenderer) last(t *testing.T) float64 {
	t.Helper()
	if len(r.times) == 0 {
		t.Fatal("renderer was never called")
	}
	return r.times[len(r.times)-1]
}

func loadedSession(t *testing.T, rows int, rate float64) *session.Session {
	t.Helper()
	var b strings.Builder
	b.WriteString("ax,ay,az,gx,gy,gz,mx,my,mz\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,0,0,0,0,0,0,0,0\n", i)
	}
	series, err := imu.ParseCSV(b.String(), rate)
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	sess := session.New()
	sess.LoadSeries(series)
	return sess
}

func TestDataScrubSnaps(t *testing.T) {
	sess := loadedSession(t, 312, 104)
	r := &recordingRenderer{}
	c := NewDataController(sess, r)

	testCases := []struct {
		name      string
		requested float64
		want      float64
	}{
		{"negative_snaps_first", -3, 0},
		{"exact", 1.5, 1.5},
		{"between", 1.501, math.Ceil(1.501*104) / 104},
		{"past_end_snaps_last", 99, 311.0 / 104},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.ScrubTo(tc.requested)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("ScrubTo(%v) = %v, want %v", tc.requested, got, tc.want)
			}
			if c.Timeline().Current() != got {
				t.Errorf("playhead = %v, want %v", c.Timeline().Current(), got)
			}
			// The data timeline is authoritative over itself: the chart is
			// driven with the snapped time, untranslated.
			if r.last(t) != got {
				t.Errorf("render reference = %v, want %v", r.last(t), got)
			}
		})
	}
}

func TestDataScrubNoDataset(t *testing.T) {
	sess := session.New()
	r := &recordingRenderer{}
	c := NewDataController(sess, r)
	if got := c.ScrubTo(2); got != 0 {
		t.Errorf("ScrubTo without a dataset = %v, want 0", got)
	}
	if len(r.times) != 0 {
		t.Error("renderer must not run without a dataset")
	}
}

func TestDataControllerRebind(t *testing.T) {
	sess := loadedSession(t, 10, 104)
	c := NewDataController(sess, &recordingRenderer{})
	ctl := NewSliderControl(1.0 / 104)

	// Re-running setup after each load must not stack input handlers.
	for i := 0; i < 5; i++ {
		c.Bind(ctl)
	}
	if n := ctl.HandlerCount(); n != 1 {
		t.Fatalf("handler count after repeated Bind = %d, want 1", n)
	}

	var scrubs int
	c.SetManualScrubHook(func() { scrubs++ })
	ctl.Input(0.05)
	if scrubs != 1 {
		t.Errorf("manual scrub hook fired %d times, want 1", scrubs)
	}

	c.Unbind()
	if n := ctl.HandlerCount(); n != 0 {
		t.Errorf("handler count after Unbind = %d, want 0", n)
	}
}

func TestVideoScrubTranslatesThroughOffset(t *testing.T) {
	sess := loadedSession(t, 312, 104)
	sess.Sync.MarkVideo(0.2)
	sess.Sync.MarkData(1.5)
	if err := sess.Sync.Apply(); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	r := &recordingRenderer{}
	c := NewVideoController(sess, r)
	c.SetDuration(10)

	got := c.ScrubTo(2.0)
	if got != 2.0 {
		t.Fatalf("ScrubTo(2.0) = %v", got)
	}
	// offset = 0.2 - 1.5 = -1.3, so the chart window is centred at 3.3.
	if want := 3.3; math.Abs(r.last(t)-want) > 1e-12 {
		t.Errorf("render reference = %v, want %v", r.last(t), want)
	}

	// The data playhead is never moved from the video path.
	dc := NewDataController(sess, &recordingRenderer{})
	if dc.Timeline().Current() != 0 {
		t.Errorf("data playhead moved to %v", dc.Timeline().Current())
	}
}

func TestVideoScrubClampsAndSteps(t *testing.T) {
	sess := session.New()
	c := NewVideoController(sess, nil)
	c.SetDuration(10)

	testCases := []struct {
		name     string
		request  float64
		wantTime float64
		wantStep int
	}{
		{"negative", -2, 0, 0},
		{"mid", 1.0, 1.0, 30},
		{"fractional", 2.49, 2.49, 75},
		{"clamped_high", 25, 10, 300},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.ScrubTo(tc.request); got != tc.wantTime {
				t.Errorf("ScrubTo(%v) = %v, want %v", tc.request, got, tc.wantTime)
			}
			if got := c.Step(); got != tc.wantStep {
				t.Errorf("Step() = %d, want %d", got, tc.wantStep)
			}
		})
	}
	if got := c.TotalSteps(); got != 300 {
		t.Errorf("TotalSteps() = %d, want 300", got)
	}
}

func TestFormatSeconds(t *testing.T) {
	testCases := []struct {
		in   float64
		want string
	}{
		{0, "0:00.000"},
		{1.5, "0:01.500"},
		{59.9994, "0:59.999"},
		{83.5, "1:23.500"},
		{600, "10:00.000"},
		{-4, "0:00.000"},
	}
	for _, tc := range testCases {
		if got := FormatSeconds(tc.in); got != tc.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
