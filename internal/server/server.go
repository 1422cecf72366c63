// Package server exposes the merged playlist over HTTP and rebuilds it on a
// timer, so set-top boxes can point at one stable URL while the upstream
// sources keep changing.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"
)

// Server rebuilds and serves a merged playlist. Build is called once at
// startup and then every Refresh interval (0 disables the timer); the last
// good playlist keeps being served when a rebuild fails.
type Server struct {
	Addr     string
	Refresh  time.Duration
	MaxConns int

	// Build produces the serialized playlist and its channel count.
	Build func(ctx context.Context) (text string, channels int, err error)

	mu        sync.RWMutex
	playlist  string
	channels  int
	builtAt   time.Time
	lastError string
}

// Run builds the initial playlist, starts the refresh loop and serves until
// ctx is cancelled. The first build must succeed; later failures only log.
func (s *Server) Run(ctx context.Context) error {
	if err := s.rebuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	if s.Refresh > 0 {
		go s.refreshLoop(ctx)
	}

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	if s.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.MaxConns)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/playlist.m3u", s.servePlaylist)
	mux.HandleFunc("/healthz", s.serveHealth)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Handler: logRequests(mux)}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Serving playlist on %s (refresh %s, max conns %d)", ln.Addr(), s.Refresh, s.MaxConns)
		serverErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Print("Shutting down ...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
		<-serverErr
		return nil
	}
}

func (s *Server) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.Refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.rebuild(ctx); err != nil {
				log.Printf("Refresh failed, keeping previous playlist: %v", err)
			}
		}
	}
}

func (s *Server) rebuild(ctx context.Context) error {
	start := time.Now()
	text, channels, err := s.Build(ctx)
	metricRefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metricRefreshTotal.WithLabelValues("error").Inc()
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		return err
	}
	metricRefreshTotal.WithLabelValues("ok").Inc()
	metricChannels.Set(float64(channels))

	s.mu.Lock()
	s.playlist = text
	s.channels = channels
	s.builtAt = time.Now()
	s.lastError = ""
	s.mu.Unlock()
	log.Printf("Playlist rebuilt: %d channels in %s", channels, time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Server) servePlaylist(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	text := s.playlist
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/x-mpegurl")
	w.Header().Set("Content-Length", strconv.Itoa(len(text)))
	_, _ = w.Write([]byte(text))
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := struct {
		Status    string    `json:"status"`
		Channels  int       `json:"channels"`
		BuiltAt   time.Time `json:"built_at"`
		LastError string    `json:"last_error,omitempty"`
	}{
		Status:    "ok",
		Channels:  s.channels,
		BuiltAt:   s.builtAt,
		LastError: s.lastError,
	}
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingResponseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lw, r)
		status := lw.status
		if status == 0 {
			status = http.StatusOK
		}
		metricRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(status)).Inc()
		log.Printf(
			"http: %s %s status=%d bytes=%d dur=%s remote=%s",
			r.Method, r.URL.Path, status, lw.bytes, time.Since(start).Round(time.Millisecond), r.RemoteAddr,
		)
	})
}
