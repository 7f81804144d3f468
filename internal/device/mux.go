package device

import (
	"bufio"
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"

	"tailscale.com/tsweb"
)

// ErrWriteFailed indicates a short write to the sensor link.
var ErrWriteFailed = fmt.Errorf("failed to write to sensor link")

// Mux is the interface main and the API wire against; satisfied by
// SensorMux over both real and mock ports.
type Mux interface {
	// Subscribe creates a channel receiving streamed sample lines. The
	// returned id identifies the channel for Unsubscribe.
	Subscribe() (string, chan string)
	// Unsubscribe removes and closes a subscriber channel.
	Unsubscribe(string)
	// StartStream subscribes the device to the IMU9 stream.
	StartStream() error
	// StopStream unsubscribes the device from the stream.
	StopStream() error
	// Monitor reads sample lines from the link and fans them out to
	// subscribers until the context is cancelled.
	Monitor(context.Context) error
	// Close closes all subscriber channels and the port.
	Close() error
	// AttachAdminRoutes mounts debug endpoints (live tail, stream
	// start/stop) under /debug/.
	AttachAdminRoutes(*http.ServeMux)
}

// SensorMux multiplexes one sensor link to many subscribers. Streamed lines
// are fanned out without blocking: a slow subscriber drops lines rather
// than stalling the monitor loop.
type SensorMux[T Porter] struct {
	port         T
	subscribers  map[string]chan string
	subscriberMu sync.Mutex
	commandMu    sync.Mutex
	closing      bool
	closingMu    sync.Mutex
}

// NewSensorMux wraps an open port.
func NewSensorMux[T Porter](port T) *SensorMux[T] {
	return &SensorMux[T]{
		port:        port,
		subscribers: make(map[string]chan string),
	}
}

// NewRealSensorMux opens the serial bridge at path and wraps it.
func NewRealSensorMux(path string) (*SensorMux[Porter], error) {
	port, err := OpenPort(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sensor link %s: %w", path, err)
	}
	return NewSensorMux[Porter](port), nil
}

func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

// Subscribe registers a new sample-line channel.
func (s *SensorMux[T]) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string, 64)
	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	s.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber channel.
func (s *SensorMux[T]) Unsubscribe(id string) {
	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
}

// StartStream subscribes the device to the IMU9 stream.
func (s *SensorMux[T]) StartStream() error {
	return s.sendFrame(startCommand())
}

// StopStream unsubscribes the device from the stream.
func (s *SensorMux[T]) StopStream() error {
	return s.sendFrame(stopCommand())
}

func (s *SensorMux[T]) sendFrame(frame []byte) error {
	if err := validateCommand(frame); err != nil {
		return err
	}
	s.commandMu.Lock()
	defer s.commandMu.Unlock()
	frame = append(frame, '\n')
	n, err := s.port.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return ErrWriteFailed
	}
	return nil
}

// Monitor reads lines from the port and fans them out to subscribers until
// the context is cancelled or the port drains.
func (s *SensorMux[T]) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(s.port)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// Reading happens on its own goroutine so the blocking Scan cannot
	// keep the outer loop from seeing context cancellation.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			return err

		case line, ok := <-lineChan:
			if !ok {
				return scan.Err()
			}

			s.closingMu.Lock()
			if s.closing {
				s.closingMu.Unlock()
				return nil
			}
			s.closingMu.Unlock()

			s.subscriberMu.Lock()
			for _, ch := range s.subscribers {
				select {
				case ch <- line:
				default:
					// slow subscriber: drop rather than stall
				}
			}
			s.subscriberMu.Unlock()
		}
	}
}

// Close shuts down all subscribers and the underlying port.
func (s *SensorMux[T]) Close() error {
	s.closingMu.Lock()
	s.closing = true
	s.closingMu.Unlock()

	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	return s.port.Close()
}

// AttachAdminRoutes mounts a live sample tail (SSE) and stream start/stop
// endpoints on the debug handler.
func (s *SensorMux[T]) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleSilentFunc("sensor/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.StartStream(); err != nil {
			http.Error(w, fmt.Sprintf("failed to start stream: %v", err), http.StatusInternalServerError)
			return
		}
		fmt.Fprintln(w, "stream started")
	})

	debug.HandleSilentFunc("sensor/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.StopStream(); err != nil {
			http.Error(w, fmt.Sprintf("failed to stop stream: %v", err), http.StatusInternalServerError)
			return
		}
		fmt.Fprintln(w, "stream stopped")
	})

	debug.HandleSilentFunc("sensor/tail", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		id, c := s.Subscribe()
		defer s.Unsubscribe(id)

		w.Write([]byte(": ping\n\n"))
		w.(http.Flusher).Flush()

		for {
			select {
			case line, ok := <-c:
				if !ok {
					return
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", line); err != nil {
					return
				}
				w.(http.Flusher).Flush()
			case <-r.Context().Done():
				return
			}
		}
	})
}
