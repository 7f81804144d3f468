package api

import (
	"net/http"

	"github.com/banshee-data/motion.review/internal/httputil"
)

// handleStatus reports a consolidated view of the whole session, the
// payload the UI polls to keep every control in step. Method: GET.
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	videoMark, dataMark := ws.sess.Sync.Marks()

	data := map[string]interface{}{"loaded": false}
	if ws.sess.Series != nil {
		data = map[string]interface{}{
			"loaded":   true,
			"samples":  ws.sess.Series.Len(),
			"duration": ws.sess.Series.Duration(),
			"rate":     ws.sess.Series.Rate,
			"current":  ws.data.Timeline().Current(),
		}
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"session_id": ws.sess.ID,
		"created_at": ws.sess.CreatedAt,
		"media":      ws.sess.Media,
		"data":       data,
		"video": map[string]interface{}{
			"current":     ws.video.Timeline().Current(),
			"step":        ws.video.Step(),
			"total_steps": ws.video.TotalSteps(),
		},
		"sync": map[string]interface{}{
			"offset":     ws.sess.Sync.Offset(),
			"video_mark": videoMark,
			"data_mark":  dataMark,
			"can_apply":  ws.sess.Sync.CanApply(),
		},
		"playback": map[string]interface{}{
			"state":   ws.driver.State().String(),
			"rate":    ws.driver.Rate(),
			"enabled": ws.driver.Enabled(),
		},
		"annotations": len(ws.sess.Annotations()),
		"notes":       ws.sess.Notes,
	})
}
