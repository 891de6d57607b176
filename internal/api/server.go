// Package api exposes the planner over HTTP using a method-routed ServeMux.
package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/unit-planner/internal/calendar"
	"github.com/p-n-ai/unit-planner/internal/planner"
	"github.com/p-n-ai/unit-planner/internal/planning"
	"github.com/p-n-ai/unit-planner/internal/registry"
	"github.com/p-n-ai/unit-planner/internal/suggest"
)

const (
	maxBodyBytes = 1 << 20
	readyTimeout = 2 * time.Second
)

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Config holds the dependencies of the HTTP server.
type Config struct {
	Service  *planner.Service
	Calendar *calendar.Calendar
	Live     http.Handler     // optional websocket feed
	Checks   map[string]Check // run by /readyz
}

// Server serves the planner API.
type Server struct {
	svc      *planner.Service
	calendar *calendar.Calendar
	live     http.Handler
	checks   map[string]Check
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("api: service is required")
	}
	cal := cfg.Calendar
	if cal == nil {
		var err error
		cal, err = calendar.Load("")
		if err != nil {
			return nil, err
		}
	}
	return &Server{
		svc:      cfg.Service,
		calendar: cal,
		live:     cfg.Live,
		checks:   cfg.Checks,
	}, nil
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/classes", s.handleListClasses)
	mux.HandleFunc("PATCH /api/classes/{classId}/subjects/{subjectId}", s.handleUpdateSubject)

	mux.HandleFunc("GET /api/planning/{subjectId}", s.handleSavedMonths)
	mux.HandleFunc("GET /api/planning/{subjectId}/progress", s.handleGetProgress)
	mux.HandleFunc("POST /api/planning/{subjectId}/progress", s.handleMarkProgress)
	mux.HandleFunc("POST /api/planning/{subjectId}/draft", s.handleSaveDraft)
	mux.HandleFunc("POST /api/planning/{subjectId}/publish", s.handlePublish)
	mux.HandleFunc("GET /api/planning/{subjectId}/report", s.handleReport)
	mux.HandleFunc("GET /api/planning/{subjectId}/report.xlsx", s.handleReportXLSX)

	mux.HandleFunc("GET /api/planning/{subjectId}/{month}", s.handleGetPlan)
	mux.HandleFunc("POST /api/planning/{subjectId}/{month}", s.handleSavePlan)
	mux.HandleFunc("GET /api/planning/{subjectId}/{month}/concepts", s.handleConcepts)
	mux.HandleFunc("POST /api/planning/{subjectId}/{month}/weeks", s.handleAddWeek)
	mux.HandleFunc("PUT /api/planning/{subjectId}/{month}/weeks/{weekId}", s.handleUpdateWeek)
	mux.HandleFunc("DELETE /api/planning/{subjectId}/{month}/weeks/{weekId}", s.handleDeleteWeek)
	mux.HandleFunc("POST /api/planning/{subjectId}/{month}/weeks/{weekId}/move", s.handleMoveWeek)
	mux.HandleFunc("GET /api/planning/{subjectId}/{month}/reports", s.handleWeekReports)
	mux.HandleFunc("PUT /api/planning/{subjectId}/{month}/weeks/{weekId}/report", s.handleSaveWeekReport)

	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/months", s.handleMonths)
	mux.HandleFunc("GET /api/calendar/events", s.handleEvents)
	mux.HandleFunc("GET /api/calendar/holidays", s.handleHolidays)

	mux.HandleFunc("POST /api/ai/suggestions", s.handleSuggest)
	mux.HandleFunc("GET /api/ai/suggestions", s.handleCurrentSuggestions)
	mux.HandleFunc("DELETE /api/ai/suggestions", s.handleClearSuggestions)

	mux.HandleFunc("POST /api/reset", s.handleReset)
	if s.live != nil {
		mux.Handle("GET /api/live", s.live)
	}
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "checks": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// month returns the month path value in canonical form. Labels that do not
// parse are used verbatim.
func month(r *http.Request) string {
	raw := r.PathValue("month")
	if label, err := calendar.NormalizeLabel(raw); err == nil {
		return label
	}
	return raw
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", errBadRequest, err)
	}
	return body, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeCached writes payload with an ETag and answers 304 when the client
// already holds the same representation.
func writeCached(w http.ResponseWriter, r *http.Request, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tag := etag(data)
	w.Header().Set("ETag", tag)
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(data, '\n'))
}

func etag(data []byte) string {
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

type errorBody struct {
	Error  string                `json:"error"`
	Fields []planning.FieldError `json:"fields,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, planning.ErrInvalidSection),
		errors.Is(err, planning.ErrInvalidPayload),
		errors.Is(err, registry.ErrInvalidStatus),
		errors.Is(err, planner.ErrInvalidMonth),
		errors.Is(err, suggest.ErrInvalidKind),
		errors.Is(err, calendar.ErrInvalidRange),
		errors.Is(err, calendar.ErrInvalidType),
		errors.Is(err, calendar.ErrInvalidLabel):
		return http.StatusBadRequest
	case errors.Is(err, errNotFound), errors.Is(err, planning.ErrWeekNotFound):
		return http.StatusNotFound
	case errors.Is(err, suggest.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := errorBody{Error: err.Error()}

	var ve *planning.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = "internal error"
	} else {
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, body)
}
