package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/banshee-data/motion.review/internal/httputil"
	"github.com/banshee-data/motion.review/internal/session"
)

// handleAnnotations manages the session's annotation list.
// Methods: GET (list), POST (add {time?, label, category?, notes?}),
// DELETE (?index=N).
func (ws *WebServer) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ws.mu.Lock()
		defer ws.mu.Unlock()
		httputil.WriteJSONOK(w, map[string]interface{}{
			"annotations": ws.sess.Annotations(),
		})

	case http.MethodPost:
		var req struct {
			Time     *float64 `json:"time"`
			Label    string   `json:"label"`
			Category string   `json:"category"`
			Notes    string   `json:"notes"`
		}
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if req.Label == "" {
			httputil.BadRequest(w, "annotation label is required")
			return
		}

		ws.mu.Lock()
		defer ws.mu.Unlock()

		// An absent time pins the annotation to the current data playhead.
		t := ws.data.Timeline().Current()
		if req.Time != nil {
			t = *req.Time
		}
		ws.sess.AddAnnotation(session.Annotation{
			Time:     t,
			Label:    req.Label,
			Category: req.Category,
			Notes:    req.Notes,
		})
		httputil.WriteJSONOK(w, map[string]interface{}{
			"annotations": ws.sess.Annotations(),
		})

	case http.MethodDelete:
		idx, err := strconv.Atoi(r.URL.Query().Get("index"))
		if err != nil {
			httputil.BadRequest(w, fmt.Sprintf("invalid 'index' parameter: %v", err))
			return
		}

		ws.mu.Lock()
		defer ws.mu.Unlock()

		if err := ws.sess.DeleteAnnotation(idx); err != nil {
			httputil.NotFound(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, map[string]interface{}{
			"annotations": ws.sess.Annotations(),
		})

	default:
		httputil.MethodNotAllowed(w)
	}
}
