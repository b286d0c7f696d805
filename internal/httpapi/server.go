// Package httpapi exposes the pipeline over a small JSON REST surface.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"NewsScope/internal/domain"
	"NewsScope/internal/usecase"
)

const (
	maxSummarizeBody  = 1 << 20
	maxSummarizeTexts = 50
)

// Service is the slice of the pipeline the HTTP layer consumes.
type Service interface {
	ListTopics() []string
	GetTopicArticles(ctx context.Context, topic string) (usecase.Result, error)
	Search(ctx context.Context, query string) (usecase.Result, error)
	SummarizeTexts(ctx context.Context, texts []string) []string
}

// Options tune the router.
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ArticlesResponse is the data payload of topic and search requests.
type ArticlesResponse struct {
	Mode          domain.Mode                 `json:"mode"`
	Term          string                      `json:"term"`
	Empty         bool                        `json:"empty"`
	Message       string                      `json:"message,omitempty"`
	Batch         domain.AnalyzedBatch        `json:"batch"`
	Visualization domain.VisualizationDataset `json:"visualization"`
}

// SummarizeRequest is the body for POST /summarize.
type SummarizeRequest struct {
	Texts []string `json:"texts"`
}

// Server serves the pipeline over HTTP.
type Server struct {
	svc     Service
	router  chi.Router
	timeout time.Duration
	logger  *slog.Logger
}

// NewServer builds the router with middleware and routes.
func NewServer(svc Service, opts Options) *Server {
	s := &Server{svc: svc, timeout: opts.RequestTimeout, logger: opts.Logger}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.router = s.buildRouter(opts.CORSOrigins)
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) buildRouter(origins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/topics", s.handleTopics)
	r.Get("/topic/{name}", s.handleTopic)
	r.Get("/search", s.handleSearch)
	r.Post("/summarize", s.handleSummarize)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(r.Context(), s.timeout)
	}
	return context.WithCancel(r.Context())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"status": "ok"},
	})
}

func (s *Server) handleTopics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.svc.ListTopics()})
}

func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(chi.URLParam(r, "name"))
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.svc.GetTopicArticles(ctx, topic)
	s.writeResult(w, domain.ModeTopic, topic, res, err)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.svc.Search(ctx, query)
	s.writeResult(w, domain.ModeSearch, query, res, err)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSummarizeBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts must not be empty")
		return
	}
	if len(req.Texts) > maxSummarizeTexts {
		writeError(w, http.StatusBadRequest, "too many texts")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string][]string{"summaries": s.svc.SummarizeTexts(ctx, req.Texts)},
	})
}

func (s *Server) writeResult(w http.ResponseWriter, mode domain.Mode, term string, res usecase.Result, err error) {
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("request failed", "mode", mode, "term", term, "error", err)
		}
		writeError(w, status, msg)
		return
	}

	payload := ArticlesResponse{
		Mode:          mode,
		Term:          term,
		Empty:         res.Empty,
		Batch:         res.Batch,
		Visualization: res.Visualization,
	}
	if res.Empty {
		payload.Message = emptyMessage(mode, term)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: payload})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidFingerprint):
		return http.StatusBadRequest, err.Error()
	case domain.IsRetrieval(err):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func emptyMessage(mode domain.Mode, term string) string {
	if mode == domain.ModeSearch {
		return "no articles with \"" + term + "\" in the title"
	}
	return "no recent articles for topic \"" + term + "\""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{Success: false, Error: msg})
}
