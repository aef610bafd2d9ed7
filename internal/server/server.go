// Package server is the local relay endpoint. The browser relay posts
// intercepted ClickTime responses here and listens for host instructions.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tiliavir/clicktime-assistant/internal/flow"
	"github.com/Tiliavir/clicktime-assistant/internal/ingest"
	"github.com/Tiliavir/clicktime-assistant/internal/suggest"
)

const maxBody = 32 << 20

// Dispatcher consumes relayed events.
type Dispatcher interface {
	DispatchAll(ctx context.Context, events []ingest.Event)
	Reset(ctx context.Context) error
}

// StatusSource reports readiness for a suggestion run.
type StatusSource interface {
	Readiness(ctx context.Context) (suggest.Readiness, error)
}

// EnabledReader reads the ingestion switch.
type EnabledReader interface {
	Enabled(ctx context.Context) (bool, error)
}

// Runner performs a suggestion run on request.
type Runner interface {
	Select(ctx context.Context, clientID string) error
	SetNote(ctx context.Context, note string) error
	Run(ctx context.Context) flow.Result
}

// Status is the body of GET /status.
type Status struct {
	Enabled bool     `json:"enabled"`
	Ready   bool     `json:"ready"`
	Missing []string `json:"missing"`
	Relays  int      `json:"relays"`
}

// Deps are the collaborators a Server routes to. Runner may be nil, which
// disables POST /run.
type Deps struct {
	Dispatcher Dispatcher
	Status     StatusSource
	Enabled    EnabledReader
	Runner     Runner
	Hub        *Hub
	// ClickTimeURL is the host whose navigation clears captured state.
	ClickTimeURL string
	Logger       *slog.Logger
}

// Server serves the relay API.
type Server struct {
	Deps
	upgrader websocket.Upgrader
}

// New returns a Server.
func New(d Deps) *Server {
	return &Server{
		Deps: d,
		upgrader: websocket.Upgrader{
			// The relay runs as a browser extension with its own origin.
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", s.handleEvents)
	mux.HandleFunc("POST /navigate", s.handleNavigate)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /status", s.handleStatus)
	if s.Runner != nil {
		mux.HandleFunc("POST /run", s.handleRun)
	}
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // POST /run waits on the model and every post
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("relay server listening", "addr", ln.Addr().String())
		errc <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down relay server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Hub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.Logger.Info("relay server stopped")
	return nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := ingest.DecodeEvents(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Finish storing even if the relay hangs up.
	s.Dispatcher.DispatchAll(context.WithoutCancel(r.Context()), events)
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(events)})
}

type navigateRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !ingest.OnHost(req.URL, s.ClickTimeURL) {
		writeJSON(w, http.StatusOK, map[string]bool{"cleared": false})
		return
	}
	s.Logger.Info("navigation on ClickTime, clearing captured data", "url", req.URL)
	if err := s.Dispatcher.Reset(context.WithoutCancel(r.Context())); err != nil {
		s.Logger.Error("clearing captured data failed", "error", err)
		http.Error(w, "clearing storage failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rd, err := s.Status.Readiness(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	enabled, err := s.Enabled.Enabled(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, Status{
		Enabled: enabled,
		Ready:   rd.Ready,
		Missing: rd.Missing,
		Relays:  s.Hub.Len(),
	})
}

type runRequest struct {
	Client *string `json:"client"`
	Note   *string `json:"note"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	ctx := context.WithoutCancel(r.Context())
	if req.Client != nil {
		if err := s.Runner.Select(ctx, *req.Client); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if req.Note != nil {
		if err := s.Runner.SetNote(ctx, *req.Note); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.Runner.Run(ctx))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	ws.SetReadLimit(maxBody)
	rl := s.Hub.add(ws)
	defer s.Hub.remove(rl)
	s.Logger.Info("relay connected", "remote", r.RemoteAddr)

	ctx := context.WithoutCancel(r.Context())
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.Logger.Warn("relay connection lost", "error", err)
			}
			s.Logger.Info("relay disconnected", "remote", r.RemoteAddr)
			return
		}
		events, err := ingest.DecodeEvents(bytes.NewReader(msg))
		if err != nil {
			s.Logger.Warn("discarding malformed relay message", "error", err)
			continue
		}
		s.Dispatcher.DispatchAll(ctx, events)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
