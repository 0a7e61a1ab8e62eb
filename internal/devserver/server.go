// Package devserver is a small stand-in for the marketing-ops backend. It
// speaks the same {ok, data, error} envelope over the same routes and keeps
// its data in SQLite, so the client can be driven end to end without the real
// service.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mops-cli/internal/model"

	"go.uber.org/zap"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	maxBodyBytes = 1 << 20
)

type Config struct {
	DBPath string
	// Token, when set, must be presented as a bearer token on every /api request.
	Token string
	// Latency delays every /api response, to make races between requests visible.
	Latency time.Duration
	Logger  *zap.Logger
}

type Server struct {
	cfg Config
	db  *DB
	log *zap.Logger
}

func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.DBPath == "" {
		return nil, errors.New("devserver: db path is empty")
	}
	if cfg.Latency < 0 {
		return nil, errors.New("devserver: latency must not be negative")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	db, err := OpenDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, db: db, log: log}, nil
}

func (s *Server) DB() *DB { return s.db }

func (s *Server) Close() error { return s.db.Close() }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/{orgId}/campaigns", s.handleListCampaigns)
	api.HandleFunc("POST /api/{orgId}/campaigns", s.handleCreateCampaign)
	api.HandleFunc("GET /api/{orgId}/campaigns/{id}", s.handleGetCampaign)
	api.HandleFunc("PATCH /api/{orgId}/campaigns/{id}", s.handleUpdateCampaign)
	api.HandleFunc("DELETE /api/{orgId}/campaigns/{id}", s.handleDeleteCampaign)
	api.HandleFunc("GET /api/{orgId}/campaigns/{id}/tasks", s.handleListTasks)
	api.HandleFunc("POST /api/{orgId}/campaigns/{id}/tasks", s.handleCreateTask)
	api.HandleFunc("PATCH /api/{orgId}/campaigns/{id}/tasks/{taskId}", s.handleUpdateTask)
	api.HandleFunc("DELETE /api/{orgId}/campaigns/{id}/tasks/{taskId}", s.handleDeleteTask)
	api.HandleFunc("GET /api/{orgId}/campaigns/{id}/members", s.handleListMembers)
	api.HandleFunc("GET /api/{orgId}/campaigns/{id}/labels", s.handleListLabels)
	api.HandleFunc("GET /api/{orgId}/campaigns/{id}/milestones", s.handleListMilestones)
	api.HandleFunc("GET /api/{orgId}/schedules", s.handleListSchedules)
	api.HandleFunc("POST /api/{orgId}/schedules", s.handleCreateSchedule)
	api.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})

	mux.Handle("/api/", s.withAuth(s.withLatency(api)))
	return s.withLogging(mux)
}

// Serve runs the handler on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type errorBody struct {
	Message string `json:"message"`
}

type envelope struct {
	OK         bool              `json:"ok"`
	Data       any               `json:"data,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
	Error      *errorBody        `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{OK: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{OK: false, Error: &errorBody{Message: msg}})
}

// writeStoreError maps storage errors onto the backend's status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, kind string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, kind+" not found")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		s.log.Error("devserver storage error", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLatency(next http.Handler) http.Handler {
	if s.cfg.Latency <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.NewTimer(s.cfg.Latency)
		defer t.Stop()
		select {
		case <-t.C:
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("devserver request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestId", r.Header.Get("X-Request-Id")),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func timeParam(r *http.Request, name string) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
