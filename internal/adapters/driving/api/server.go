// Package api exposes the question-answering service over HTTP.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driving"
	"github.com/arcline-labs/askdoc/internal/logger"
)

// Default server parameters.
const (
	DefaultAddr         = ":8090"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Minute // document builds can be slow
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Addr is the listen address (default: ":8090").
	Addr string

	// AuthToken, when non-empty, requires `Authorization: Bearer <token>`
	// on every API call.
	AuthToken string
}

// Server serves the question-answering API.
type Server struct {
	qa        driving.QAService
	authToken string
	httpSrv   *http.Server
}

// runRequest is the POST /api/v1/run request body.
type runRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// runResponse is the POST /api/v1/run response body.
type runResponse struct {
	Answers []string `json:"answers"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// NewServer creates a new API server.
func NewServer(qa driving.QAService, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{
		qa:        qa,
		authToken: cfg.AuthToken,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/run", s.withAuth(s.handleRun))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	logger.Info("API listening on %s", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// withAuth enforces bearer-token auth when a token is configured.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.authToken)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized", uuid.New().String())
				return
			}
		}
		next(w, r)
	}
}

// handleRun answers a batch of questions against one document.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}
	if req.Documents == "" || len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "documents and questions are required", requestID)
		return
	}

	logger.Info("Request %s: %d questions against %s", requestID, len(req.Questions), req.Documents)

	answers, err := s.qa.Answer(r.Context(), req.Documents, req.Questions)
	if err != nil {
		status := statusFor(err)
		logger.Warn("Request %s failed (%d): %v", requestID, status, err)
		writeError(w, status, err.Error(), requestID)
		return
	}

	writeJSON(w, http.StatusOK, runResponse{Answers: answers})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Write response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, requestID string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: requestID})
}
