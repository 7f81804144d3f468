// Package api exposes the review session over HTTP: dataset upload, video
// registration, sync marking, playback control, charts, annotations and
// project persistence.
package api

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/banshee-data/motion.review/internal/chart"
	"github.com/banshee-data/motion.review/internal/db"
	"github.com/banshee-data/motion.review/internal/device"
	"github.com/banshee-data/motion.review/internal/httputil"
	"github.com/banshee-data/motion.review/internal/imu"
	"github.com/banshee-data/motion.review/internal/monitoring"
	"github.com/banshee-data/motion.review/internal/playback"
	"github.com/banshee-data/motion.review/internal/pose"
	"github.com/banshee-data/motion.review/internal/session"
	"github.com/banshee-data/motion.review/internal/timeline"
	"github.com/banshee-data/motion.review/internal/version"
)

// WebServer handles the HTTP interface for a review session. All session
// state is serialized behind mu: handlers lock it for the duration of a
// request, and the playback driver locks it on every tick.
type WebServer struct {
	address string
	server  *http.Server

	mu           sync.Mutex
	sess         *session.Session
	data         *timeline.DataController
	video        *timeline.VideoController
	dataControl  *timeline.SliderControl
	videoControl *timeline.SliderControl
	charts       *chart.Updater
	surfaces     map[string]*chart.MemorySurface
	marker       *chart.MemoryMarker
	driver       *playback.Driver

	db       *db.DB
	sensor   device.Mux
	recorder *device.Recorder
	pose     pose.Estimator
	static   fs.FS
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address   string
	DB        *db.DB
	Scheduler playback.Scheduler
	Sensor    device.Mux         // optional: nil disables sensor endpoints
	Recorder  *device.Recorder   // required when Sensor is set
	Pose      pose.Estimator     // optional: nil disables the pose endpoint
	Static    fs.FS              // embedded UI; nil disables the root handler
}

// NewWebServer creates the web server and the session it manages.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:  config.Address,
		db:       config.DB,
		sensor:   config.Sensor,
		recorder: config.Recorder,
		pose:     config.Pose,
		static:   config.Static,
	}

	ws.sess = session.New()
	ws.charts = chart.NewUpdater(ws.sess)
	ws.surfaces = make(map[string]*chart.MemorySurface)
	for _, group := range chart.Groups {
		s := chart.NewMemorySurface()
		ws.surfaces[group.Name] = s
		ws.charts.SetSurface(group.Name, s)
	}
	ws.marker = &chart.MemoryMarker{}
	ws.charts.AddMarker(ws.marker)

	ws.data = timeline.NewDataController(ws.sess, ws.charts)
	ws.video = timeline.NewVideoController(ws.sess, ws.charts)
	ws.videoControl = timeline.NewSliderControl(1 / timeline.DefaultStepRateHz)
	ws.video.Bind(ws.videoControl)

	ws.driver = playback.NewDriver(config.Scheduler, ws.data, &ws.mu)

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

// Start begins the HTTP server and blocks until ctx is cancelled, then
// shuts the server down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		monitoring.Logf("starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			monitoring.Logf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}

	monitoring.Logf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)

	mux.HandleFunc("/api/status", ws.handleStatus)

	mux.HandleFunc("/api/data", ws.handleData)
	mux.HandleFunc("/api/data/upload", ws.handleDataUpload)
	mux.HandleFunc("/api/data/scrub", ws.handleDataScrub)
	mux.HandleFunc("/api/data/mark", ws.handleMarkData)

	mux.HandleFunc("/api/video", ws.handleVideo)
	mux.HandleFunc("/api/video/scrub", ws.handleVideoScrub)
	mux.HandleFunc("/api/video/mark", ws.handleMarkVideo)

	mux.HandleFunc("/api/sync", ws.handleSync)
	mux.HandleFunc("/api/sync/apply", ws.handleSyncApply)

	mux.HandleFunc("/api/playback", ws.handlePlayback)
	mux.HandleFunc("/api/playback/play", ws.handlePlay)
	mux.HandleFunc("/api/playback/pause", ws.handlePause)
	mux.HandleFunc("/api/playback/back", ws.handleBack)
	mux.HandleFunc("/api/playback/forward", ws.handleForward)
	mux.HandleFunc("/api/playback/rate", ws.handleRate)

	mux.HandleFunc("/api/annotations", ws.handleAnnotations)

	mux.HandleFunc("/charts", ws.handleChartsHTML)
	mux.HandleFunc("/api/charts/state", ws.handleChartState)

	mux.HandleFunc("/api/project/save", ws.handleProjectSave)
	mux.HandleFunc("/api/project/load", ws.handleProjectLoad)
	mux.HandleFunc("/api/projects", ws.handleProjectList)
	mux.HandleFunc("/api/project/export", ws.handleProjectExport)
	mux.HandleFunc("/api/project/import", ws.handleProjectImport)
	mux.HandleFunc("/api/report", ws.handleReport)
	mux.HandleFunc("/api/plot", ws.handlePlot)

	mux.HandleFunc("/api/pose", ws.handlePose)

	if ws.sensor != nil {
		mux.HandleFunc("/api/sensor/record/start", ws.handleRecordStart)
		mux.HandleFunc("/api/sensor/record/stop", ws.handleRecordStop)
		mux.HandleFunc("/api/recordings", ws.handleRecordings)
		mux.HandleFunc("/api/recordings/load", ws.handleRecordingLoad)
		ws.sensor.AttachAdminRoutes(mux)
	}

	if ws.db != nil {
		if err := ws.db.AttachAdminRoutes(mux); err != nil {
			monitoring.Logf("failed to attach db admin routes: %v", err)
		}
	}

	if ws.static != nil {
		mux.Handle("/", http.FileServer(http.FS(ws.static)))
	}

	return mux
}

// rebindData replaces the data slider after the sample series changes, so
// range and step reflect the new dataset. Callers hold mu.
func (ws *WebServer) rebindData() {
	rate := imu.DefaultSampleRateHz
	var duration float64
	if ws.sess.Series != nil {
		rate = ws.sess.Series.Rate
		duration = ws.sess.Series.Duration()
	}

	ws.dataControl = timeline.NewSliderControl(1 / rate)
	ws.data.Bind(ws.dataControl)
	ws.dataControl.SetRange(0, duration)
	ws.driver.RefreshEnablement()
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"status":     "ok",
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}
