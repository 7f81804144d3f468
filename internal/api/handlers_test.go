package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/motion.review/internal/db"
	"github.com/banshee-data/motion.review/internal/device"
	"github.com/banshee-data/motion.review/internal/playback"
	"github.com/banshee-data/motion.review/internal/pose"
)

func TestAnnotationLifecycle(t *testing.T) {
	_, mux := newTestServer(t)
	uploadCSV(t, mux, fixtureCSV(2.0))

	rec, _ := doJSON(t, mux, http.MethodPost, "/api/annotations", `{"label": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty label = %d, want 400", rec.Code)
	}

	doJSON(t, mux, http.MethodPost, "/api/annotations", `{"time": 1.5, "label": "rep 1", "category": "rep"}`)

	// An absent time pins to the current data playhead.
	doJSON(t, mux, http.MethodPost, "/api/data/scrub", `{"time": 0.5}`)
	_, resp := doJSON(t, mux, http.MethodPost, "/api/annotations", `{"label": "at playhead"}`)

	list := resp["annotations"].([]interface{})
	if len(list) != 2 {
		t.Fatalf("got %d annotations, want 2", len(list))
	}
	second := list[1].(map[string]interface{})
	if got := second["time"].(float64); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("playhead annotation time = %v, want 0.5", got)
	}

	rec, _ = doJSON(t, mux, http.MethodDelete, "/api/annotations?index=5", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("out of range delete = %d, want 404", rec.Code)
	}

	_, resp = doJSON(t, mux, http.MethodDelete, "/api/annotations?index=0", "")
	list = resp["annotations"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("got %d annotations after delete, want 1", len(list))
	}
	if list[0].(map[string]interface{})["label"] != "at playhead" {
		t.Errorf("wrong annotation deleted: %v", list)
	}
}

func TestProjectSaveAndLoad(t *testing.T) {
	ws, mux := newTestServer(t)
	uploadCSV(t, mux, fixtureCSV(2.0))
	doJSON(t, mux, http.MethodPost, "/api/video", `{"name": "clip.mp4", "size": 42, "duration": 8}`)
	doJSON(t, mux, http.MethodPost, "/api/video/mark", `{"time": 0.2}`)
	doJSON(t, mux, http.MethodPost, "/api/data/mark", `{"time": 1.5}`)
	doJSON(t, mux, http.MethodPost, "/api/sync/apply", "")
	doJSON(t, mux, http.MethodPost, "/api/annotations", `{"time": 1, "label": "rep"}`)

	rec, saved := doJSON(t, mux, http.MethodPost, "/api/project/save", `{"notes": "morning run"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save = %d: %v", rec.Code, saved)
	}
	if saved["project_id"] == "" {
		t.Fatal("save response missing project id")
	}

	// Wipe session sync state, then load the project back.
	ws.mu.Lock()
	ws.sess.Sync.Restore(0)
	ws.sess.Notes = ""
	ws.sess.RestoreAnnotations(nil)
	ws.mu.Unlock()

	// Re-registering the same video reports the saved project.
	_, vresp := doJSON(t, mux, http.MethodPost, "/api/video", `{"name": "clip.mp4", "size": 42, "duration": 8}`)
	if vresp["has_saved_project"] != true {
		t.Errorf("has_saved_project = %v, want true", vresp["has_saved_project"])
	}

	_, loaded := doJSON(t, mux, http.MethodPost, "/api/project/load", "")
	if got := loaded["sync_offset"].(float64); math.Abs(got-(-1.3)) > 1e-9 {
		t.Errorf("restored offset = %v, want -1.3", got)
	}

	_, sync := doJSON(t, mux, http.MethodGet, "/api/sync", "")
	if got := sync["offset"].(float64); math.Abs(got-(-1.3)) > 1e-9 {
		t.Errorf("session offset = %v, want -1.3", got)
	}
	_, ann := doJSON(t, mux, http.MethodGet, "/api/annotations", "")
	if got := len(ann["annotations"].([]interface{})); got != 1 {
		t.Errorf("restored annotations = %d, want 1", got)
	}

	// Loading must not move either playhead.
	_, status := doJSON(t, mux, http.MethodGet, "/api/status", "")
	video := status["video"].(map[string]interface{})
	if got := video["current"].(float64); got != 0 {
		t.Errorf("video playhead moved on load: %v", got)
	}
}

func TestProjectLoadWithoutSave(t *testing.T) {
	_, mux := newTestServer(t)
	doJSON(t, mux, http.MethodPost, "/api/video", `{"name": "new.mp4", "size": 9, "duration": 4}`)
	rec, _ := doJSON(t, mux, http.MethodPost, "/api/project/load", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("load without save = %d, want 404", rec.Code)
	}
}

func TestProjectListAndDelete(t *testing.T) {
	_, mux := newTestServer(t)
	doJSON(t, mux, http.MethodPost, "/api/video", `{"name": "a.mp4", "size": 1, "duration": 2}`)
	_, saved := doJSON(t, mux, http.MethodPost, "/api/project/save", "")

	_, resp := doJSON(t, mux, http.MethodGet, "/api/projects", "")
	projects := resp["projects"].([]interface{})
	if len(projects) != 1 {
		t.Fatalf("got %d projects, want 1", len(projects))
	}

	id := saved["project_id"].(string)
	rec, _ := doJSON(t, mux, http.MethodDelete, "/api/projects?project_id="+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	rec, _ = doJSON(t, mux, http.MethodDelete, "/api/projects?project_id="+id, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestProjectExportImport(t *testing.T) {
	_, mux := newTestServer(t)
	uploadCSV(t, mux, fixtureCSV(1.0))
	doJSON(t, mux, http.MethodPost, "/api/video", `{"name": "clip.mp4", "size": 5, "duration": 6}`)
	doJSON(t, mux, http.MethodPost, "/api/video/mark", `{"time": 0.2}`)
	doJSON(t, mux, http.MethodPost, "/api/data/mark", `{"time": 1.5}`)
	doJSON(t, mux, http.MethodPost, "/api/sync/apply", "")

	req := httptest.NewRequest(http.MethodGet, "/api/project/export", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("export content-type = %s", ct)
	}
	archive := rec.Body.Bytes()

	// Import into a fresh server.
	_, mux2 := newTestServer(t)
	req = httptest.NewRequest(http.MethodPost, "/api/project/import", bytes.NewReader(archive))
	rec = httptest.NewRecorder()
	mux2.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import = %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["has_dataset"] != true {
		t.Error("import did not restore the dataset")
	}

	_, sync := doJSON(t, mux2, http.MethodGet, "/api/sync", "")
	if got := sync["offset"].(float64); math.Abs(got-(-1.3)) > 1e-9 {
		t.Errorf("imported offset = %v, want -1.3", got)
	}
	_, data := doJSON(t, mux2, http.MethodGet, "/api/data", "")
	if got := data["samples"].(float64); got != 105 {
		t.Errorf("imported samples = %v, want 105", got)
	}
}

func TestReportAndPlotEndpoints(t *testing.T) {
	_, mux := newTestServer(t)
	uploadCSV(t, mux, fixtureCSV(1.0))

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "CHANNEL STATISTICS") {
		t.Errorf("report = %d:\n%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/plot?group=gyroscope", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("plot = %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("plot output is not a PNG")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/plot?group=thermometer", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown group = %d, want 400", rec.Code)
	}
}

func TestChartEndpoints(t *testing.T) {
	_, mux := newTestServer(t)

	rec, _ := doJSON(t, mux, http.MethodGet, "/charts", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("charts without data = %d, want 404", rec.Code)
	}

	uploadCSV(t, mux, fixtureCSV(10.0))
	doJSON(t, mux, http.MethodPost, "/api/data/scrub", `{"time": 5}`)

	req := httptest.NewRequest(http.MethodGet, "/charts", nil)
	hrec := httptest.NewRecorder()
	mux.ServeHTTP(hrec, req)
	if hrec.Code != http.StatusOK {
		t.Fatalf("charts = %d", hrec.Code)
	}
	for _, want := range []string{"accelerometer", "gyroscope", "magnetometer"} {
		if !strings.Contains(hrec.Body.String(), want) {
			t.Errorf("charts page missing %q", want)
		}
	}

	_, state := doJSON(t, mux, http.MethodGet, "/api/charts/state", "")
	// t=5 centers its window, putting the marker at 50%.
	if got := state["marker_percent"].(float64); math.Abs(got-50) > 1e-9 {
		t.Errorf("marker = %v, want 50", got)
	}
	surfaces := state["surfaces"].(map[string]interface{})
	if len(surfaces) != 3 {
		t.Errorf("got %d surfaces, want 3", len(surfaces))
	}
}

func TestSensorRecordingFlow(t *testing.T) {
	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	sensor := device.NewMockSensorMux(nil)
	recorder := device.NewRecorder()
	ws := NewWebServer(WebServerConfig{
		Address:   "127.0.0.1:0",
		DB:        database,
		Scheduler: playback.NewManualScheduler(),
		Sensor:    sensor,
		Recorder:  recorder,
	})
	mux := ws.setupRoutes()

	rec, _ := doJSON(t, mux, http.MethodPost, "/api/sensor/record/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("record start = %d", rec.Code)
	}

	// Samples arrive via the subscriber goroutine in production; feed the
	// recorder directly here.
	recorder.Append("1,2,3,4,5,6,7,8,9")
	recorder.Append("9,8,7,6,5,4,3,2,1")

	_, resp := doJSON(t, mux, http.MethodPost, "/api/sensor/record/stop", `{"name": "bench"}`)
	if got := resp["samples"].(float64); got != 2 {
		t.Fatalf("samples = %v, want 2", got)
	}
	id := resp["recording_id"].(string)

	_, listResp := doJSON(t, mux, http.MethodGet, "/api/recordings", "")
	if got := len(listResp["recordings"].([]interface{})); got != 1 {
		t.Fatalf("recordings = %d, want 1", got)
	}

	_, loadResp := doJSON(t, mux, http.MethodPost, "/api/recordings/load", `{"recording_id": "`+id+`"}`)
	if got := loadResp["samples"].(float64); got != 2 {
		t.Errorf("loaded samples = %v, want 2", got)
	}

	_, data := doJSON(t, mux, http.MethodGet, "/api/data", "")
	if data["loaded"] != true {
		t.Error("recording load did not populate the session")
	}
}

type fixedEstimator struct {
	result pose.Result
}

func (f fixedEstimator) EstimateFrame(ctx context.Context, videoTime float64) (pose.Result, error) {
	r := f.result
	r.Time = videoTime
	return r, nil
}

func TestPoseEndpoint(t *testing.T) {
	// Without an estimator the endpoint is absent.
	_, mux := newTestServer(t)
	rec, _ := doJSON(t, mux, http.MethodGet, "/api/pose", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("pose without estimator = %d, want 404", rec.Code)
	}

	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	ws := NewWebServer(WebServerConfig{
		Address:   "127.0.0.1:0",
		DB:        database,
		Scheduler: playback.NewManualScheduler(),
		Pose: fixedEstimator{result: pose.Result{Keypoints: []pose.Keypoint{
			{Name: "nose", X: 0.5, Y: 0.2, Score: 0.9},
			{Name: "left_knee", X: 0.4, Y: 0.7, Score: 0.7},
		}}},
	})
	mux = ws.setupRoutes()

	_, resp := doJSON(t, mux, http.MethodGet, "/api/pose?time=2.5", "")
	if got := resp["mean_score"].(float64); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("mean score = %v, want 0.8", got)
	}
	result := resp["result"].(map[string]interface{})
	if got := result["time"].(float64); got != 2.5 {
		t.Errorf("result time = %v, want 2.5", got)
	}
}
