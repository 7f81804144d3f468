package api

import (
	"errors"
	"net/http"

	"github.com/banshee-data/motion.review/internal/httputil"
	"github.com/banshee-data/motion.review/internal/playback"
)

// handlePlayback reports the playback state. Method: GET.
func (ws *WebServer) handlePlayback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.writePlaybackState(w)
}

// handlePlay starts playback. Method: POST. Returns 409 while no dataset
// with a positive duration is loaded.
func (ws *WebServer) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if err := ws.driver.Play(); err != nil {
		if errors.Is(err, playback.ErrNotReady) {
			httputil.Conflict(w, err.Error())
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}
	ws.writePlaybackState(w)
}

// handlePause pauses playback. Pausing while already paused is a no-op.
// Method: POST.
func (ws *WebServer) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.driver.Pause()
	ws.writePlaybackState(w)
}

// handleBack pauses and steps the data playhead one sample back.
// Method: POST.
func (ws *WebServer) handleBack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.driver.Back()
	ws.writePlaybackState(w)
}

// handleForward pauses and steps the data playhead one sample forward.
// Method: POST.
func (ws *WebServer) handleForward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.driver.Forward()
	ws.writePlaybackState(w)
}

// handleRate sets the playback rate multiplier.
// Method: POST. Body: {"rate": multiplier}, which must be positive.
func (ws *WebServer) handleRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.Rate <= 0 {
		httputil.BadRequest(w, "rate must be positive")
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.driver.SetRate(req.Rate)
	ws.writePlaybackState(w)
}

// writePlaybackState emits the shared playback payload. Callers hold mu.
func (ws *WebServer) writePlaybackState(w http.ResponseWriter) {
	httputil.WriteJSONOK(w, map[string]interface{}{
		"state":   ws.driver.State().String(),
		"rate":    ws.driver.Rate(),
		"enabled": ws.driver.Enabled(),
		"time":    ws.data.Timeline().Current(),
	})
}
