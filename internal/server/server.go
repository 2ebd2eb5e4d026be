// Package server exposes the scan pipeline over HTTP and WebSocket: one-shot
// synchronous scans, background scan jobs with streamed progress, and the
// interactive API documentation.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/logging"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/scanner"
	"github.com/agentlens/agentlens/internal/utils"
)

// Server is the HTTP + WebSocket API surface.
type Server struct {
	cfg      Config
	scanner  *scanner.Scanner
	jobs     *jobManager
	cache    *resultCache
	limiter  *rateLimiter
	router   chi.Router
	upgrader websocket.Upgrader
	logger   interfaces.Logger
	redis    *redis.Client
}

// NewServer creates a Server with its own scanner. Redis-backed features
// come up only when the config names a redis address.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	sc, err := scanner.New(cfg.Scanner, logger)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	s := &Server{
		cfg:     cfg,
		scanner: sc,
		jobs:    newJobManager(sc, logger),
		cache:   newResultCache(rdb, cfg.CacheTTL, logger),
		limiter: newRateLimiter(rdb, cfg.RateLimitPerMinute, logger),
		router:  chi.NewRouter(),
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
		redis: rdb,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/scans", s.optionsHandler("POST"))
	r.Options("/jobs/scan", s.optionsHandler("POST"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/ws/jobs/{jobID}", s.optionsHandler("GET"))

	r.Get("/healthz", s.handleHealth)

	// Synchronous scans
	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		r.Post("/scans", s.handleScan)
		r.Post("/jobs/scan", s.handleStartScanJob)
	})

	// Jobs over REST
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// WebSockets for job progress
	r.Get("/ws/jobs/{jobID}", s.handleJobWS)

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []interfaces.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, interfaces.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close releases the redis connection. In-flight jobs keep running.
func (s *Server) Close() {
	if s.redis != nil {
		s.redis.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // scans can outlive any fixed write deadline
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness probe
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleScan godoc
// @Summary Scan a URL synchronously
// @Accept json
// @Produce json
// @Param request body ScanRequest true "scan request"
// @Success 200 {object} model.ScanResult
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /scans [post]
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	req, err := decodeScanRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Fetch before the cache lookup so the key carries the content
	// fingerprint; a materially changed page misses the old entry.
	doc, fetchErr := s.scanner.Fetch(r.Context(), req.URL)
	if doc == nil {
		s.logger.Warn("fetch failed",
			interfaces.Field{Key: "url", Value: req.URL},
			interfaces.Field{Key: "error", Value: fetchErr.Error()})
		writeError(w, http.StatusBadGateway, fetchErr.Error())
		return
	}

	key := cacheKey(req.URL, req.Options, utils.Fingerprint([]byte(doc.RawHTML)))
	result, cached, err := s.cache.GetOrScan(r.Context(), key, func() (*model.ScanResult, error) {
		return s.scanner.ScanFetched(r.Context(), req.URL, doc, fetchErr, req.Options)
	})
	if err != nil {
		s.logger.Warn("scan failed",
			interfaces.Field{Key: "url", Value: req.URL},
			interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.logger.Info("scan served",
		interfaces.Field{Key: "url", Value: req.URL},
		interfaces.Field{Key: "cached", Value: cached},
		interfaces.Field{Key: "grade", Value: result.Grade})
	if cached {
		w.Header().Set("X-Cache", "HIT")
	}
	writeJSON(w, http.StatusOK, result)
}

// handleStartScanJob godoc
// @Summary Start a background scan job
// @Accept json
// @Produce json
// @Param request body ScanRequest true "scan request"
// @Success 202 {object} Job
// @Failure 400 {object} ErrorResponse
// @Router /jobs/scan [post]
func (s *Server) handleStartScanJob(w http.ResponseWriter, r *http.Request) {
	req, err := decodeScanRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := s.jobs.Start(req.URL, req.Options)
	s.logger.Info("started scan job",
		interfaces.Field{Key: "job_id", Value: job.ID},
		interfaces.Field{Key: "url", Value: req.URL})
	writeJSON(w, http.StatusAccepted, job)
}

// handleListJobs godoc
// @Summary List scan jobs
// @Produce json
// @Success 200 {array} Job
// @Router /jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobs.List()
	writeJSON(w, http.StatusOK, jobs)
}

// handleGetJob godoc
// @Summary Get one scan job
// @Produce json
// @Param jobID path string true "job id"
// @Success 200 {object} Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.jobs.Get(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob godoc
// @Summary Cancel a scan job
// @Param jobID path string true "job id"
// @Success 204
// @Router /jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.jobs.Cancel(jobID)
	s.logger.Info("canceled job", interfaces.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// handleJobWS streams a job's progress events, then the settled job.
func (s *Server) handleJobWS(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.jobs.Get(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket",
			interfaces.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Client disconnected; the job keeps running for REST pickup.
			return
		}
	}
	_ = conn.WriteJSON(job)
}

func decodeScanRequest(r *http.Request) (*ScanRequest, error) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid JSON")
	}
	if req.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if req.Options != nil {
		if err := req.Options.Validate(); err != nil {
			return nil, err
		}
	}
	return &req, nil
}
