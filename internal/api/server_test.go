package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/motion.review/internal/db"
	"github.com/banshee-data/motion.review/internal/imu"
	"github.com/banshee-data/motion.review/internal/playback"
)

func newTestServer(t *testing.T) (*WebServer, *http.ServeMux) {
	t.Helper()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ws := NewWebServer(WebServerConfig{
		Address:   "127.0.0.1:0",
		DB:        database,
		Scheduler: playback.NewManualScheduler(),
	})
	return ws, ws.setupRoutes()
}

// fixtureCSV builds a canonical upload covering the given number of seconds
// at 104 Hz, endpoint included.
func fixtureCSV(seconds float64) string {
	var b strings.Builder
	b.WriteString(strings.Join(imu.ChannelNames, ",") + "\n")
	rows := int(seconds*imu.DefaultSampleRateHz) + 1
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,2,3,4,5,6,7,8,9\n", i%10)
	}
	return b.String()
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, resp
}

func uploadCSV(t *testing.T, mux *http.ServeMux, csv string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload failed: %d %s", rec.Code, rec.Body.String())
	}
	resp := map[string]interface{}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("upload response: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	_, mux := newTestServer(t)
	rec, _ := doJSON(t, mux, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("health = %d, want 200", rec.Code)
	}
}

func TestDataUploadAndStatus(t *testing.T) {
	_, mux := newTestServer(t)

	resp := uploadCSV(t, mux, fixtureCSV(3.0))
	if got := resp["samples"].(float64); got != 313 {
		t.Errorf("samples = %v, want 313", got)
	}
	if got := resp["duration"].(float64); got != 3.0 {
		t.Errorf("duration = %v, want 3.0", got)
	}

	_, status := doJSON(t, mux, http.MethodGet, "/api/data", "")
	if status["loaded"] != true {
		t.Errorf("data not loaded after upload: %v", status)
	}
	if status["channels"] == nil {
		t.Error("data status missing channel statistics")
	}

	rec, _ := doJSON(t, mux, http.MethodDelete, "/api/data", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear failed: %d", rec.Code)
	}
	_, status = doJSON(t, mux, http.MethodGet, "/api/data", "")
	if status["loaded"] != false {
		t.Errorf("data still loaded after clear: %v", status)
	}
}

func TestDataUploadRejectsEmpty(t *testing.T) {
	_, mux := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", strings.NewReader("\n\n\n"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty upload = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/data/upload?rate=0", strings.NewReader(fixtureCSV(1)))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero rate upload = %d, want 400", rec.Code)
	}
}

func TestDataScrubSnapsForward(t *testing.T) {
	_, mux := newTestServer(t)
	uploadCSV(t, mux, fixtureCSV(3.0))

	// The first sample at or after 0.005s is index 1 at 1/104 s.
	_, resp := doJSON(t, mux, http.MethodPost, "/api/data/scrub", `{"time": 0.005}`)
	want := 1.0 / 104.0
	if got := resp["time"].(float64); math.Abs(got-want) > 1e-12 {
		t.Errorf("snapped time = %v, want %v", got, want)
	}

	// Past the end pins to the last sample.
	_, resp = doJSON(t, mux, http.MethodPost, "/api/data/scrub", `{"time": 99}`)
	if got := resp["time"].(float64); got != 3.0 {
		t.Errorf("snapped time = %v, want 3.0", got)
	}
}

func TestDataScrubWithoutDataset(t *testing.T) {
	_, mux := newTestServer(t)
	rec, _ := doJSON(t, mux, http.MethodPost, "/api/data/scrub", `{"time": 1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("scrub without dataset = %d, want 404", rec.Code)
	}
}

func TestVideoRegisterScrubAndStep(t *testing.T) {
	_, mux := newTestServer(t)

	rec, _ := doJSON(t, mux, http.MethodPost, "/api/video", `{"name": "clip.mp4", "size": 2048, "duration": 10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("video register = %d", rec.Code)
	}

	// Scrubbing past the end clamps to the duration.
	_, resp := doJSON(t, mux, http.MethodPost, "/api/video/scrub", `{"time": 25}`)
	if got := resp["time"].(float64); got != 10 {
		t.Errorf("clamped time = %v, want 10", got)
	}
	if got := resp["step"].(float64); got != 300 {
		t.Errorf("step = %v, want 300", got)
	}

	rec, _ = doJSON(t, mux, http.MethodPost, "/api/video", `{"name": "", "duration": 0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid register = %d, want 400", rec.Code)
	}
}

func TestSyncFlow(t *testing.T) {
	_, mux := newTestServer(t)
	uploadCSV(t, mux, fixtureCSV(3.0))
	doJSON(t, mux, http.MethodPost, "/api/video", `{"name": "clip.mp4", "size": 1, "duration": 10}`)

	// Applying before marking is a conflict.
	rec, _ := doJSON(t, mux, http.MethodPost, "/api/sync/apply", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("premature apply = %d, want 409", rec.Code)
	}

	doJSON(t, mux, http.MethodPost, "/api/video/mark", `{"time": 0.2}`)
	_, resp := doJSON(t, mux, http.MethodPost, "/api/data/mark", `{"time": 1.5}`)
	if resp["can_apply"] != true {
		t.Fatalf("can_apply = %v after both marks", resp["can_apply"])
	}

	_, resp = doJSON(t, mux, http.MethodPost, "/api/sync/apply", "")
	if got := resp["offset"].(float64); math.Abs(got-(-1.3)) > 1e-12 {
		t.Errorf("offset = %v, want -1.3", got)
	}
	if resp["video_mark"] != nil || resp["data_mark"] != nil {
		t.Errorf("marks not cleared: %v", resp)
	}

	// A second apply without fresh marks conflicts again.
	rec, _ = doJSON(t, mux, http.MethodPost, "/api/sync/apply", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("re-apply = %d, want 409", rec.Code)
	}
}

func TestMarkDataDefaultsToStart(t *testing.T) {
	_, mux := newTestServer(t)

	// Without a dataset the default mark is ignored.
	_, resp := doJSON(t, mux, http.MethodPost, "/api/data/mark", `{}`)
	if resp["data_mark"] != nil {
		t.Errorf("data mark set without dataset: %v", resp)
	}

	uploadCSV(t, mux, fixtureCSV(1.0))
	_, resp = doJSON(t, mux, http.MethodPost, "/api/data/mark", `{}`)
	if got, ok := resp["data_mark"].(float64); !ok || got != 0 {
		t.Errorf("default data mark = %v, want 0", resp["data_mark"])
	}
}

func TestPlaybackFlow(t *testing.T) {
	_, mux := newTestServer(t)

	// Play with nothing loaded is a conflict.
	rec, _ := doJSON(t, mux, http.MethodPost, "/api/playback/play", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("play without data = %d, want 409", rec.Code)
	}

	uploadCSV(t, mux, fixtureCSV(3.0))

	_, resp := doJSON(t, mux, http.MethodPost, "/api/playback/play", "")
	if resp["state"] != "playing" {
		t.Fatalf("state = %v, want playing", resp["state"])
	}

	// A manual scrub pauses playback.
	doJSON(t, mux, http.MethodPost, "/api/data/scrub", `{"time": 1}`)
	_, resp = doJSON(t, mux, http.MethodGet, "/api/playback", "")
	if resp["state"] != "stopped" {
		t.Errorf("state after manual scrub = %v, want stopped", resp["state"])
	}

	// Pause when already paused is a no-op.
	_, resp = doJSON(t, mux, http.MethodPost, "/api/playback/pause", "")
	if resp["state"] != "stopped" {
		t.Errorf("state = %v, want stopped", resp["state"])
	}

	_, resp = doJSON(t, mux, http.MethodPost, "/api/playback/rate", `{"rate": 2}`)
	if got := resp["rate"].(float64); got != 2 {
		t.Errorf("rate = %v, want 2", got)
	}
	rec, _ = doJSON(t, mux, http.MethodPost, "/api/playback/rate", `{"rate": 0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero rate = %d, want 400", rec.Code)
	}
}

func TestPlaybackStepButtons(t *testing.T) {
	_, mux := newTestServer(t)
	uploadCSV(t, mux, fixtureCSV(3.0))

	doJSON(t, mux, http.MethodPost, "/api/data/scrub", `{"time": 1.0}`)

	// The 10ms step floor lands between samples, so forward snaps to the
	// first sample at or after 1.01s.
	_, resp := doJSON(t, mux, http.MethodPost, "/api/playback/forward", "")
	want := 106.0 / 104.0
	if got := resp["time"].(float64); math.Abs(got-want) > 1e-9 {
		t.Errorf("forward time = %v, want %v", got, want)
	}

	_, resp = doJSON(t, mux, http.MethodPost, "/api/playback/back", "")
	want = 105.0 / 104.0
	if got := resp["time"].(float64); math.Abs(got-want) > 1e-9 {
		t.Errorf("back time = %v, want %v", got, want)
	}
}

func TestStatusConsolidated(t *testing.T) {
	_, mux := newTestServer(t)
	uploadCSV(t, mux, fixtureCSV(1.0))
	doJSON(t, mux, http.MethodPost, "/api/video", `{"name": "clip.mp4", "size": 7, "duration": 5}`)

	_, resp := doJSON(t, mux, http.MethodGet, "/api/status", "")
	data, ok := resp["data"].(map[string]interface{})
	if !ok || data["loaded"] != true {
		t.Errorf("status data = %v", resp["data"])
	}
	playbackState, ok := resp["playback"].(map[string]interface{})
	if !ok || playbackState["state"] != "stopped" {
		t.Errorf("status playback = %v", resp["playback"])
	}
	media, ok := resp["media"].(map[string]interface{})
	if !ok || media["name"] != "clip.mp4" {
		t.Errorf("status media = %v", resp["media"])
	}
}
