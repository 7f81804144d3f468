package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/motion.review/internal/api"
	"github.com/banshee-data/motion.review/internal/db"
	"github.com/banshee-data/motion.review/internal/device"
	"github.com/banshee-data/motion.review/internal/monitoring"
	"github.com/banshee-data/motion.review/internal/playback"
)

var (
	//go:embed static/*
	staticFiles embed.FS

	devMode    = flag.Bool("dev", false, "Run in dev mode (mock sensor from fixtures.txt, static files from disk)")
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "motion-review.db", "Path to the sqlite database")
	sensorPort = flag.String("port", "", "Serial path of the sensor bridge (empty disables live capture)")
)

// frameInterval is the playback tick cadence, matching a 60fps render loop.
const frameInterval = time.Second / 60

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	var sensor device.Mux
	if *devMode {
		data, err := os.ReadFile("fixtures.txt")
		if err != nil {
			log.Fatalf("failed to open fixtures file: %v", err)
		}
		sensor = device.NewMockSensorMux(data)
	} else if *sensorPort != "" {
		mux, err := device.NewRealSensorMux(*sensorPort)
		if err != nil {
			log.Fatalf("failed to open sensor port: %v", err)
		}
		sensor = mux
	}
	if sensor != nil {
		defer sensor.Close()
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := playback.NewFrameScheduler(frameInterval)
	recorder := device.NewRecorder()

	// Serve static files from disk in dev for easier iteration without
	// restarting the server.
	var static fs.FS
	if *devMode {
		static = os.DirFS("./static")
	} else {
		sub, err := fs.Sub(staticFiles, "static")
		if err != nil {
			log.Fatalf("failed to load embedded static files: %v", err)
		}
		static = sub
	}

	ws := api.NewWebServer(api.WebServerConfig{
		Address:   *listen,
		DB:        database,
		Scheduler: sched,
		Sensor:    sensor,
		Recorder:  recorder,
		Static:    static,
	})

	// playback tick loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sched.Run(ctx); err != nil && err != context.Canceled {
			monitoring.Logf("scheduler error: %v", err)
		}
		monitoring.Logf("scheduler routine terminated")
	}()

	if sensor != nil {
		// manage IO on the sensor link
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sensor.Monitor(ctx); err != nil && err != context.Canceled {
				monitoring.Logf("failed to monitor sensor link: %v", err)
			}
			monitoring.Logf("monitor routine terminated")
		}()

		// subscribe to streamed sample lines and capture them
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, c := sensor.Subscribe()
			defer sensor.Unsubscribe(id)
			for {
				select {
				case line, ok := <-c:
					if !ok {
						monitoring.Logf("subscribe routine terminated")
						return
					}
					recorder.Append(line)
				case <-ctx.Done():
					monitoring.Logf("subscribe routine terminated")
					return
				}
			}
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			monitoring.Logf("web server error: %v", err)
		}
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
