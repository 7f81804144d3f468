package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/banshee-data/motion.review/internal/httputil"
	"github.com/banshee-data/motion.review/internal/imu"
	"github.com/banshee-data/motion.review/internal/playback"
)

// maxUploadBytes caps dataset uploads at 64 MiB; an hour at 104 Hz is well
// under 10 MiB.
const maxUploadBytes = 64 << 20

// handleDataUpload loads a sensor CSV into the session.
// Method: POST. Accepts a multipart "file" field or a raw text body.
// Query param: rate (optional sample rate in Hz, default 104).
func (ws *WebServer) handleDataUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	rate := imu.DefaultSampleRateHz
	if v := r.URL.Query().Get("rate"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			httputil.BadRequest(w, fmt.Sprintf("invalid rate %q", v))
			return
		}
		rate = f
	}

	raw, err := readUploadBody(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	series, err := imu.ParseCSV(raw, rate)
	if err != nil {
		httputil.BadRequest(w, err.Error())
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
		"headers":  series.Headers,
	})
}

// readUploadBody extracts CSV text from a multipart "file" field when
// present, or the raw request body otherwise.
func readUploadBody(r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if len(contentType) >= 19 && contentType[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", fmt.Errorf("invalid multipart form: %w", err)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("missing 'file' field: %w", err)
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return "", fmt.Errorf("failed to read upload: %w", err)
		}
		return string(raw), nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	return string(raw), nil
}

// handleData reports or clears the loaded dataset.
// Methods: GET (status with channel statistics), DELETE (clear).
func (ws *WebServer) handleData(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		if ws.sess.Series == nil {
			httputil.WriteJSONOK(w, map[string]interface{}{"loaded": false})
			return
		}
		httputil.WriteJSONOK(w, map[string]interface{}{
			"loaded":   true,
			"samples":  ws.sess.Series.Len(),
			"duration": ws.sess.Series.Duration(),
			"rate":     ws.sess.Series.Rate,
			"current":  ws.data.Timeline().Current(),
			"channels": imu.Summarize(ws.sess.Series),
		})

	case http.MethodDelete:
		ws.driver.Pause()
		ws.sess.ClearSeries()
		ws.charts.Reset()
		ws.rebindData()
		httputil.WriteJSONOK(w, map[string]interface{}{"loaded": false})

	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleDataScrub moves the data playhead. The requested time snaps to the
// first sample at or after it; the snapped time comes back in the response.
// Method: POST. Body: {"time": seconds}.
func (ws *WebServer) handleDataScrub(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		Time float64 `json:"time"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.sess.Series == nil || ws.dataControl == nil {
		httputil.NotFound(w, "no dataset loaded")
		return
	}

	// Going through the slider fires the manual-scrub hook, which pauses
	// playback before the playhead moves.
	ws.dataControl.Input(req.Time)
	httputil.WriteJSONOK(w, map[string]interface{}{
		"time":    ws.data.Timeline().Current(),
		"playing": ws.driver.State() == playback.Playing,
	})
}
