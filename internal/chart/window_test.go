package chart

import "testing"

func TestWindow(t *testing.T) {
	testCases := []struct {
		name      string
		t         float64
		wantStart float64
		wantEnd   float64
	}{
		{"centered", 10, 7.5, 12.5},
		{"near_zero_clamps_start", 1, 0, 3.5},
		{"at_zero", 0, 0, 2.5},
		{"exact_half_width", 2.5, 0, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := Window(tc.t)
			if start != tc.wantStart || end != tc.wantEnd {
				t.Errorf("Window(%v) = [%v, %v], want [%v, %v]", tc.t, start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestMarkerPercent(t *testing.T) {
	testCases := []struct {
		name       string
		t          float64
		start, end float64
		want       float64
	}{
		{"centered", 10, 7.5, 12.5, 50},
		{"at_start", 7.5, 7.5, 12.5, 0},
		{"before_start_clamps", 5, 7.5, 12.5, 0},
		{"at_end", 12.5, 7.5, 12.5, 100},
		{"past_end_clamps", 20, 7.5, 12.5, 100},
		{"quarter", 8.75, 7.5, 12.5, 25},
		{"degenerate_window", 3, 3, 3, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MarkerPercent(tc.t, tc.start, tc.end); got != tc.want {
				t.Errorf("MarkerPercent(%v, %v, %v) = %v, want %v", tc.t, tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestClampedWindowMarker(t *testing.T) {
	// When the window start clamps at 0 the playhead is no longer centered:
	// t=1 gives window [0, 3.5] and marker at 1/3.5.
	start, end := Window(1)
	got := MarkerPercent(1, start, end)
	want := 1.0 / 3.5 * 100
	if got != want {
		t.Errorf("marker = %v, want %v", got, want)
	}
}
