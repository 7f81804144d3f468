package api

import (
	"errors"
	"net/http"

	"github.com/banshee-data/motion.review/internal/db"
	"github.com/banshee-data/motion.review/internal/httputil"
	"github.com/banshee-data/motion.review/internal/session"
)

// handleVideo registers or reports the loaded video.
// Methods: GET (status), POST (register {name, size, duration}).
//
// The video itself stays in the browser; the server only needs its identity
// and duration to run the sync and playback math.
func (ws *WebServer) handleVideo(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ws.mu.Lock()
		defer ws.mu.Unlock()
		httputil.WriteJSONOK(w, map[string]interface{}{
			"media":       ws.sess.Media,
			"current":     ws.video.Timeline().Current(),
			"step":        ws.video.Step(),
			"total_steps": ws.video.TotalSteps(),
		})

	case http.MethodPost:
		var req struct {
			Name     string  `json:"name"`
			Size     int64   `json:"size"`
			Duration float64 `json:"duration"`
		}
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if req.Name == "" || req.Duration <= 0 {
			httputil.BadRequest(w, "video registration requires a name and a positive duration")
			return
		}

		ws.mu.Lock()
		defer ws.mu.Unlock()

		ws.sess.Media = session.MediaInfo{Name: req.Name, Size: req.Size, Duration: req.Duration}
		ws.video.SetDuration(req.Duration)
		ws.videoControl.SetRange(0, req.Duration)

		// Tell the client whether a saved project exists for this file, so
		// it can offer to restore the sync.
		hasSaved := false
		if ws.db != nil {
			if _, err := ws.db.LoadProject(req.Name, req.Size); err == nil {
				hasSaved = true
			} else if !errors.Is(err, db.ErrProjectNotFound) {
				httputil.InternalServerError(w, err.Error())
				return
			}
		}

		httputil.WriteJSONOK(w, map[string]interface{}{
			"media":             ws.sess.Media,
			"has_saved_project": hasSaved,
		})

	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleVideoScrub moves the video playhead. Manual scrubbing always pauses
// playback first, then renders the overlay window at the sync-translated
// time. Method: POST. Body: {"time": seconds}.
func (ws *WebServer) handleVideoScrub(w http.ResponseWriter, r *http.Request) {
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

	ws.driver.Pause()
	ws.videoControl.Input(req.Time)
	httputil.WriteJSONOK(w, map[string]interface{}{
		"time": ws.video.Timeline().Current(),
		"step": ws.video.Step(),
	})
}

// handleMarkVideo records the video-side sync candidate.
// Method: POST. Body: {"time": seconds} or {} for the current playhead.
func (ws *WebServer) handleMarkVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		Time *float64 `json:"time"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	t := ws.video.Timeline().Current()
	if req.Time != nil {
		t = *req.Time
	}
	ws.sess.Sync.MarkVideo(t)
	ws.writeSyncState(w)
}

// handleMarkData records the data-side sync candidate.
// Method: POST. Body: {"time": seconds}. An absent time falls back to the
// start of the dataset, and is ignored entirely when no dataset is loaded.
func (ws *WebServer) handleMarkData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		Time *float64 `json:"time"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.sess.MarkData(req.Time)
	ws.writeSyncState(w)
}

// handleSync reports the offset and mark candidates. Method: GET.
func (ws *WebServer) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.writeSyncState(w)
}

// handleSyncApply computes the offset from the two marks and clears them.
// Method: POST. Returns 409 while either mark is missing.
func (ws *WebServer) handleSyncApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if err := ws.sess.Sync.Apply(); err != nil {
		httputil.Conflict(w, err.Error())
		return
	}

	// Re-render at the current video position so the chart window and
	// marker pick up the new translation immediately.
	ws.video.ScrubTo(ws.video.Timeline().Current())
	ws.writeSyncState(w)
}

// writeSyncState emits the shared sync payload. Callers hold mu.
func (ws *WebServer) writeSyncState(w http.ResponseWriter) {
	video, data := ws.sess.Sync.Marks()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"offset":     ws.sess.Sync.Offset(),
		"video_mark": video,
		"data_mark":  data,
		"can_apply":  ws.sess.Sync.CanApply(),
	})
}
