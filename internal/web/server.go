// Package web provides an HTTP status server for the alarm clock.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/alarm-clock/internal/status"
)

// Screen renders the current display contents as a PNG.
type Screen interface {
	WritePNG(w io.Writer, factor int) error
}

// maxScale bounds the PNG scale factor accepted from the query string.
const maxScale = 8

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	screen     Screen
}

// New creates a Server that reads state from the given tracker.
// screen and metrics may be nil; their endpoints then return 404.
func New(addr string, tracker *status.Tracker, screen Screen, metrics http.Handler) *Server {
	s := &Server{tracker: tracker, screen: screen}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/index.html", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/index.json", s.handleJSON).Methods(http.MethodGet)
	if screen != nil {
		r.HandleFunc("/display.png", s.handleDisplay).Methods(http.MethodGet)
	}
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	access := log.With().Str("component", "http").Logger()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handlers.RecoveryHandler()(handlers.LoggingHandler(access, r)),
	}
	return s
}

// Handler returns the root handler. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, s.screen != nil)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	scale := 1
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxScale {
			http.Error(w, "scale must be 1-8", http.StatusBadRequest)
			return
		}
		scale = n
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.screen.WritePNG(w, scale); err != nil {
		log.Warn().Str("component", "http").Err(err).Msg("encode display")
	}
}
