// Package api exposes the buffer pipeline and its run history over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cumberland-gis/pointbuffer/internal/db"
	"github.com/cumberland-gis/pointbuffer/internal/geoproc"
	"github.com/cumberland-gis/pointbuffer/internal/httputil"
	"github.com/cumberland-gis/pointbuffer/internal/security"
	"github.com/cumberland-gis/pointbuffer/internal/version"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Pipeline runs the two-step buffer tool.
type Pipeline interface {
	Run(ctx context.Context, p geoproc.Params) geoproc.RunResult
}

// Options tune server behavior beyond its dependencies.
type Options struct {
	// OutDir confines artifact paths in requests to a directory.
	// Empty means requests may name any path.
	OutDir string

	// StepTimeout bounds each pipeline step when the request does not
	// give its own timeout.
	StepTimeout time.Duration
}

// Server handles the JSON API.
type Server struct {
	pipeline Pipeline
	db       *db.DB
	opts     Options
}

// NewServer creates an API server over the given pipeline and run history.
func NewServer(pipeline Pipeline, database *db.DB, opts Options) *Server {
	return &Server{
		pipeline: pipeline,
		db:       database,
		opts:     opts,
	}
}

// ServeMux returns the API routes, to be mounted under /api/.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/buffer", s.runBuffer)
	mux.HandleFunc("/runs", s.listRuns)
	mux.HandleFunc("/runs/", s.getRun)
	mux.HandleFunc("/health", s.health)
	return mux
}

// BufferRequest carries the dialog parameters as delivered by the host:
// scalar inputs arrive as strings and are validated server-side.
type BufferRequest struct {
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	PointPath  string `json:"point_path"`
	Distances  string `json:"distances"`
	Units      string `json:"units"`
	BufferPath string `json:"buffer_path"`
	Segments   int    `json:"segments,omitempty"`
	RingsOnly  bool   `json:"rings_only,omitempty"`
	KeepGoing  bool   `json:"keep_going,omitempty"`
	TimeoutMs  int64  `json:"timeout_ms,omitempty"`
}

type stepResponse struct {
	Step       string   `json:"step"`
	Status     string   `json:"status"`
	Messages   []string `json:"messages,omitempty"`
	Error      string   `json:"error,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

type pointResponse struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

type runResponse struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	Projection stepResponse   `json:"projection"`
	Buffer     stepResponse   `json:"buffer"`
	Point      *pointResponse `json:"point,omitempty"`
}

func stepToResponse(r geoproc.StepResult) stepResponse {
	return stepResponse{
		Step:       r.Step,
		Status:     string(r.Status),
		Messages:   r.Messages,
		Error:      r.ErrorMessage(),
		DurationMs: r.Duration.Milliseconds(),
	}
}

func (s *Server) runBuffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req BufferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	params, err := geoproc.ParseParams(req.Latitude, req.Longitude, req.PointPath, req.Distances, req.Units, req.BufferPath)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	params.Segments = req.Segments
	params.RingsOnly = req.RingsOnly
	params.KeepGoing = req.KeepGoing
	params.StepTimeout = s.opts.StepTimeout
	if req.TimeoutMs > 0 {
		params.StepTimeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}

	if s.opts.OutDir != "" {
		if params.PointPath, err = security.ResolveWithin(s.opts.OutDir, params.PointPath); err != nil {
			httputil.BadRequest(w, "point_path: "+err.Error())
			return
		}
		if params.BufferPath, err = security.ResolveWithin(s.opts.OutDir, params.BufferPath); err != nil {
			httputil.BadRequest(w, "buffer_path: "+err.Error())
			return
		}
	}

	result := s.pipeline.Run(r.Context(), params)

	resp := runResponse{
		RunID:      uuid.NewString(),
		Status:     string(result.Status()),
		Projection: stepToResponse(result.Projection),
		Buffer:     stepToResponse(result.Buffer),
	}
	if result.Projection.OK() {
		resp.Point = &pointResponse{Easting: result.Point[0], Northing: result.Point[1]}
	}

	if err := s.db.RecordRun(db.Run{
		ID:         resp.RunID,
		CreatedAt:  time.Now().UTC(),
		Latitude:   params.Latitude,
		Longitude:  params.Longitude,
		Distances:  req.Distances,
		Units:      params.Units,
		PointPath:  params.PointPath,
		BufferPath: params.BufferPath,
		Status:     string(result.Status()),
		Message:    result.Summary(),
		DurationMs: (result.Projection.Duration + result.Buffer.Duration).Milliseconds(),
	}); err != nil {
		log.Printf("failed to record run %s: %v", resp.RunID, err)
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/runs/")
	if id == "" || strings.Contains(id, "/") {
		httputil.NotFound(w, "run not found")
		return
	}

	run, err := s.db.GetRun(id)
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, run)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}
