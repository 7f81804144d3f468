package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/banshee-data/motion.review/internal/db"
	"github.com/banshee-data/motion.review/internal/httputil"
	"github.com/banshee-data/motion.review/internal/imu"
)

// handleRecordStart begins a live sensor capture: the recorder is cleared
// and the device is subscribed to the measurement stream. Method: POST.
func (ws *WebServer) handleRecordStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.recorder.Reset()
	if err := ws.sensor.StartStream(); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{"recording": true})
}

// handleRecordStop unsubscribes the stream and stores whatever was
// captured. Method: POST. Body: optional {"name": "..."}.
func (ws *WebServer) handleRecordStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	// Body is optional.
	_ = httputil.DecodeJSON(r, &req)
	if req.Name == "" {
		req.Name = "capture"
	}

	if err := ws.sensor.StopStream(); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	count := ws.recorder.Count()
	if count == 0 {
		httputil.WriteJSONOK(w, map[string]interface{}{"recording": false, "samples": 0})
		return
	}

	if ws.db == nil {
		httputil.InternalServerError(w, "no database configured")
		return
	}
	id, err := ws.db.SaveRecording(req.Name, imu.DefaultSampleRateHz, int64(count), ws.recorder.CSV())
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"recording":    false,
		"samples":      count,
		"recording_id": id,
	})
}

// handleRecordings lists or deletes stored captures.
// Methods: GET, DELETE (?recording_id=...).
func (ws *WebServer) handleRecordings(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		httputil.InternalServerError(w, "no database configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		recordings, err := ws.db.ListRecordings()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, map[string]interface{}{"recordings": recordings})

	case http.MethodDelete:
		id := r.URL.Query().Get("recording_id")
		if id == "" {
			httputil.BadRequest(w, "missing 'recording_id' parameter")
			return
		}
		if err := ws.db.DeleteRecording(id); err != nil {
			if errors.Is(err, db.ErrRecordingNotFound) {
				httputil.NotFound(w, err.Error())
				return
			}
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, map[string]interface{}{"deleted": id})

	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleRecordingLoad loads a stored capture into the session, exactly as
// if its CSV had been uploaded. Method: POST. Body: {"recording_id": "..."}.
func (ws *WebServer) handleRecordingLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.db == nil {
		httputil.InternalServerError(w, "no database configured")
		return
	}

	var req struct {
		RecordingID string `json:"recording_id"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	rec, err := ws.db.LoadRecording(req.RecordingID)
	if errors.Is(err, db.ErrRecordingNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	series, err := imu.ParseCSV(rec.CSV, rec.SampleRate)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.driver.Pause()
	ws.sess.LoadSeries(series)
	ws.charts.Reset()
	ws.rebindData()

	httputil.WriteJSONOK(w, map[string]interface{}{
		"samples":  series.Len(),
		"duration": series.Duration(),
		"rate":     series.Rate,
	})
}

// handlePose forwards a frame to the external pose estimator.
// Method: GET. Query param: time (video seconds, default current playhead).
func (ws *WebServer) handlePose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.pose == nil {
		httputil.NotFound(w, "no pose estimator configured")
		return
	}

	ws.mu.Lock()
	t := ws.video.Timeline().Current()
	ws.mu.Unlock()

	if v := r.URL.Query().Get("time"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httputil.BadRequest(w, "invalid 'time' parameter")
			return
		}
		t = f
	}

	result, err := ws.pose.EstimateFrame(r.Context(), t)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"result":     result,
		"mean_score": result.MeanScore(),
	})
}
