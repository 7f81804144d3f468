package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/banshee-data/motion.review/internal/chart"
	"github.com/banshee-data/motion.review/internal/db"
	"github.com/banshee-data/motion.review/internal/httputil"
	"github.com/banshee-data/motion.review/internal/imu"
	"github.com/banshee-data/motion.review/internal/report"
	"github.com/banshee-data/motion.review/internal/session"
)

// projectRecord snapshots the session as a persistable record. Callers
// hold mu.
func (ws *WebServer) projectRecord() *db.ProjectRecord {
	offset := ws.sess.Sync.Offset()
	videoMark, dataMark := ws.sess.Sync.Marks()

	rate := imu.DefaultSampleRateHz
	if ws.sess.Series != nil {
		rate = ws.sess.Series.Rate
	}

	rec := &db.ProjectRecord{
		MediaName:     ws.sess.Media.Name,
		MediaSize:     ws.sess.Media.Size,
		MediaDuration: ws.sess.Media.Duration,
		SampleRate:    rate,
		SyncOffset:    &offset,
		VideoMark:     videoMark,
		DataMark:      dataMark,
		Notes:         ws.sess.Notes,
	}
	for _, a := range ws.sess.Annotations() {
		rec.Annotations = append(rec.Annotations, db.AnnotationRecord{
			Time:     a.Time,
			Label:    a.Label,
			Category: a.Category,
			Notes:    a.Notes,
		})
	}
	return rec
}

// applyProjectRecord restores persisted state into the session. Playheads
// are deliberately left where they are: restoring the offset must not move
// either timeline. Callers hold mu.
func (ws *WebServer) applyProjectRecord(rec *db.ProjectRecord, series *imu.Series) {
	if rec.SyncOffset != nil {
		ws.sess.Sync.Restore(*rec.SyncOffset)
	}
	if rec.VideoMark != nil {
		ws.sess.Sync.MarkVideo(*rec.VideoMark)
	}
	if rec.DataMark != nil {
		ws.sess.Sync.MarkData(*rec.DataMark)
	}
	ws.sess.Notes = rec.Notes

	annotations := make([]session.Annotation, 0, len(rec.Annotations))
	for _, a := range rec.Annotations {
		annotations = append(annotations, session.Annotation{
			Time:     a.Time,
			Label:    a.Label,
			Category: a.Category,
			Notes:    a.Notes,
		})
	}
	ws.sess.RestoreAnnotations(annotations)

	if series != nil {
		ws.driver.Pause()
		ws.sess.LoadSeries(series)
		ws.charts.Reset()
		ws.rebindData()
	}
}

// handleProjectSave persists the session for its media key.
// Method: POST. Body: optional {"notes": "..."} to update notes first.
func (ws *WebServer) handleProjectSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.db == nil {
		httputil.InternalServerError(w, "no database configured")
		return
	}

	var req struct {
		Notes *string `json:"notes"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.BadRequest(w, err.Error())
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.sess.Media.Name == "" {
		httputil.Conflict(w, "no video registered; nothing to key the project on")
		return
	}
	if req.Notes != nil {
		ws.sess.Notes = *req.Notes
	}

	rec := ws.projectRecord()
	if err := ws.db.SaveProject(rec); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, rec)
}

// handleProjectLoad restores the saved project for the registered video.
// Playheads do not move. Method: POST.
func (ws *WebServer) handleProjectLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.db == nil {
		httputil.InternalServerError(w, "no database configured")
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.sess.Media.Name == "" {
		httputil.Conflict(w, "register a video before loading its project")
		return
	}

	rec, err := ws.db.LoadProject(ws.sess.Media.Name, ws.sess.Media.Size)
	if errors.Is(err, db.ErrProjectNotFound) {
		httputil.NotFound(w, "no saved project for this video")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	ws.applyProjectRecord(rec, nil)
	httputil.WriteJSONOK(w, rec)
}

// handleProjectList lists or deletes saved projects.
// Methods: GET, DELETE (?project_id=...).
func (ws *WebServer) handleProjectList(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		httputil.InternalServerError(w, "no database configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		projects, err := ws.db.ListProjects()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, map[string]interface{}{"projects": projects})

	case http.MethodDelete:
		id := r.URL.Query().Get("project_id")
		if id == "" {
			httputil.BadRequest(w, "missing 'project_id' parameter")
			return
		}
		if err := ws.db.DeleteProject(id); err != nil {
			if errors.Is(err, db.ErrProjectNotFound) {
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

// handleProjectExport downloads the session as a portable zip archive.
// Method: GET.
func (ws *WebServer) handleProjectExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	name := ws.sess.Media.Name
	if name == "" {
		name = "session"
	}

	// Build in memory first so a plot failure surfaces as a clean error
	// instead of a truncated download.
	var buf bytes.Buffer
	if err := report.ExportArchive(&buf, ws.sess, ws.projectRecord()); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.zip", name))
	w.Write(buf.Bytes())
}

// handleProjectImport loads a previously exported archive into the session,
// replacing sync state, annotations and (when present) the dataset.
// Method: POST with multipart "file" field or raw zip body.
func (ws *WebServer) handleProjectImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	raw, err := readUploadBody(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	rec, series, err := report.ImportArchive(bytes.NewReader([]byte(raw)), int64(len(raw)))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.sess.Media = session.MediaInfo{
		Name:     rec.MediaName,
		Size:     rec.MediaSize,
		Duration: rec.MediaDuration,
	}
	if rec.MediaDuration > 0 {
		ws.video.SetDuration(rec.MediaDuration)
		ws.videoControl.SetRange(0, rec.MediaDuration)
	}
	ws.applyProjectRecord(rec, series)

	httputil.WriteJSONOK(w, map[string]interface{}{
		"media":       ws.sess.Media,
		"has_dataset": series != nil,
		"annotations": len(ws.sess.Annotations()),
	})
}

// handleReport renders the plain-text session report. Method: GET.
func (ws *WebServer) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	text := report.Build(ws.sess)
	ws.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

// handlePlot renders one sensor group as a PNG over the full recording.
// Method: GET. Query param: group (accelerometer, gyroscope, magnetometer).
func (ws *WebServer) handlePlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	name := r.URL.Query().Get("group")
	group, ok := chart.GroupByName(name)
	if !ok {
		httputil.BadRequest(w, fmt.Sprintf("unknown group %q", name))
		return
	}

	ws.mu.Lock()
	series := ws.sess.Series
	ws.mu.Unlock()

	if series == nil || series.Len() == 0 {
		httputil.NotFound(w, "no dataset loaded")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteGroupPNG(&buf, series, group); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}
