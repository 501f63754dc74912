package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ridoystarlord/querycanvas/export"
	"github.com/ridoystarlord/querycanvas/logging"
	"github.com/ridoystarlord/querycanvas/results"
	"github.com/ridoystarlord/querycanvas/schema"
)

// maxQueryBytes bounds the request body of /api/results and /api/export.
const maxQueryBytes = 1 << 20

// Backend is what the HTTP layer needs from the service.
type Backend interface {
	Schema(ctx context.Context) (schema.Graph, error)
	GetSchema(ctx context.Context) (string, error)
	Results(ctx context.Context, query string) ([]results.Row, error)
	GetResults(ctx context.Context, query string) (string, error)
}

// Pinger reports database reachability for /api/health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the schema and result pipelines over HTTP.
type Server struct {
	backend Backend
	pinger  Pinger
	log     *zap.SugaredLogger
}

// New creates a Server. pinger may be nil, in which case /api/health only
// reports that the process is up.
func New(backend Backend, pinger Pinger, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{backend: backend, pinger: pinger, log: log}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/schema", s.handleSchema)
	mux.HandleFunc("/api/results", s.handleResults)
	mux.HandleFunc("/api/references", s.handleReferences)
	mux.HandleFunc("/api/export", s.handleExport)
	mux.HandleFunc("/api/health", s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := s.backend.GetSchema(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, body)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query, ok := readQuery(w, r)
	if !ok {
		return
	}

	body, err := s.backend.GetResults(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, body)
}

// handleReferences answers ?key=table.column with the columns that hold a
// foreign key to it and the columns it references itself.
func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	table, column, ok := schema.SplitKey(r.URL.Query().Get("key"))
	if !ok {
		writeError(w, http.StatusBadRequest, "key must look like table.column")
		return
	}

	g, err := s.backend.Schema(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := struct {
		Key        string   `json:"key"`
		Dependents []string `json:"dependents"`
		Referenced []string `json:"referenced"`
	}{
		Key:        schema.Key(table, column),
		Dependents: nonNil(g.Dependents(table, column)),
		Referenced: nonNil(g.Referenced(table, column)),
	}

	b, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, string(b))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	table := r.URL.Query().Get("table")
	if format == export.FormatSQL && table == "" {
		writeError(w, http.StatusBadRequest, "table parameter required for sql export")
		return
	}

	query, ok := readQuery(w, r)
	if !ok {
		return
	}

	rows, err := s.backend.Results(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	content, err := export.Render(format, table, rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate export: "+err.Error())
		return
	}

	filename := "result." + string(format)
	if table != "" {
		filename = table + "." + string(format)
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	io.WriteString(w, content)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "failed to ping database: "+err.Error())
			return
		}
	}
	writeJSON(w, `{"status":"ok"}`)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
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

func readQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req queryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxQueryBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return "", false
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return "", false
	}
	return req.Query, true
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	b, _ := json.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
