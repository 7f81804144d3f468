package api

import (
	"net/http"

	"github.com/banshee-data/motion.review/internal/chart"
	"github.com/banshee-data/motion.review/internal/httputil"
)

// handleChartsHTML renders the three channel charts as a standalone HTML
// page centered on the current data playhead. Method: GET.
func (ws *WebServer) handleChartsHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	series := ws.sess.Series
	reference := ws.data.Timeline().Current()
	ws.mu.Unlock()

	if series == nil || series.Len() == 0 {
		httputil.NotFound(w, "no dataset loaded")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.WriteHTML(w, series, reference); err != nil {
		httputil.InternalServerError(w, err.Error())
	}
}

// handleChartState reports the in-memory chart surfaces: plotted series,
// visible window and marker position. The browser polls this to drive its
// own canvases. Method: GET.
func (ws *WebServer) handleChartState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	httputil.WriteJSONOK(w, map[string]interface{}{
		"surfaces":       ws.surfaces,
		"marker_percent": ws.marker.Percent,
		"reference":      ws.data.Timeline().Current(),
	})
}
