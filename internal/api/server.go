// Package api provides the REST API for TAC conversion.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tac_converter/internal/conversion"
	"tac_converter/internal/service"
	"tac_converter/internal/storage"
	"tac_converter/internal/timeref"
)

// Config holds configuration for the API server.
type Config struct {
	AuthEnabled    bool
	APIKeys        []string      // valid API keys when auth is enabled
	RequestTimeout time.Duration // default 30s
}

// Server serves the conversion endpoints.
type Server struct {
	svc         *service.Service
	logger      *slog.Logger
	authEnabled bool
	apiKeys     map[string]bool
	router      chi.Router
}

// NewServer creates the API server and its routes.
func NewServer(svc *service.Service, logger *slog.Logger, cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Server{
		svc:         svc,
		logger:      logger,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.authEnabled {
			r.Use(s.authMiddleware)
		}
		r.Post("/tokenize", s.handleTokenize)
		r.Post("/convert", s.handleConvert)
		r.Post("/reconstruct", s.handleReconstruct)
		r.Post("/resolve", s.handleResolve)
		r.Get("/conversions", s.handleConversions)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", "addr", addr, "auth", s.authEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware accepts an X-API-Key header or an Authorization bearer token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}
		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// messageRequest is the body of /tokenize and /convert.
type messageRequest struct {
	Text           string            `json:"text"`
	Type           string            `json:"type,omitempty"`
	Hints          map[string]string `json:"hints,omitempty"`
	ReferenceMonth string            `json:"reference_month,omitempty"` // YYYY-MM
}

// modelRequest is the body of /reconstruct and /resolve.
type modelRequest struct {
	Type           string            `json:"type"`
	Model          json.RawMessage   `json:"model"`
	Hints          map[string]string `json:"hints,omitempty"`
	ReferenceMonth string            `json:"reference_month,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decode(w, r, &req) {
		return
	}
	t, hints, ok := typeAndHints(w, req.Type, req.Hints)
	if !ok {
		return
	}

	res, err := s.svc.Tokenize(req.Text, t, hints)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decode(w, r, &req) {
		return
	}
	t, hints, ok := typeAndHints(w, req.Type, req.Hints)
	if !ok {
		return
	}
	ym, ok := referenceMonth(w, req.ReferenceMonth)
	if !ok {
		return
	}

	resp, err := s.svc.Convert(r.Context(), service.Request{
		Text:           req.Text,
		Type:           t,
		Hints:          hints,
		ReferenceMonth: ym,
		Source:         "http",
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := http.StatusOK
	if resp.Status == conversion.Fail {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	var req modelRequest
	if !decode(w, r, &req) {
		return
	}
	t, hints, ok := typeAndHints(w, req.Type, req.Hints)
	if !ok {
		return
	}
	report, err := service.DecodeReport(t, req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text, err := s.svc.Reconstruct(report, hints)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req modelRequest
	if !decode(w, r, &req) {
		return
	}
	t, _, ok := typeAndHints(w, req.Type, nil)
	if !ok {
		return
	}
	ym, ok := referenceMonth(w, req.ReferenceMonth)
	if !ok {
		return
	}
	report, err := service.DecodeReport(t, req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	month, err := s.svc.Resolve(report, ym)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reference_month": month.String(),
		"model":           report,
	})
}

// ConversionResponse is the JSON view of an archived conversion.
type ConversionResponse struct {
	ID            int64              `json:"id"`
	ReceivedAt    string             `json:"received_at"`
	Source        string             `json:"source"`
	ReportType    string             `json:"report_type"`
	Status        string             `json:"status"`
	Location      string             `json:"location,omitempty"`
	RawText       string             `json:"raw_text"`
	Reconstructed string             `json:"reconstructed,omitempty"`
	Model         json.RawMessage    `json:"model,omitempty"`
	Issues        []conversion.Issue `json:"issues,omitempty"`
}

func (s *Server) handleConversions(w http.ResponseWriter, r *http.Request) {
	store := s.svc.Store()
	if store == nil {
		writeError(w, http.StatusNotFound, "conversion archive is disabled")
		return
	}

	q := r.URL.Query()
	p := storage.QueryParams{
		ReportType: strings.ToUpper(q.Get("type")),
		Status:     strings.ToUpper(q.Get("status")),
		Location:   strings.ToUpper(q.Get("location")),
		FullText:   q.Get("q"),
		OrderDesc:  true,
	}
	for name, dst := range map[string]*int{"limit": &p.Limit, "offset": &p.Offset} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid "+name)
				return
			}
			*dst = n
		}
	}

	records, err := store.Query(r.Context(), p)
	if err != nil {
		s.logger.Error("failed to query conversions", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	out := make([]ConversionResponse, 0, len(records))
	for _, rec := range records {
		cr := ConversionResponse{
			ID:            rec.ID,
			ReceivedAt:    rec.ReceivedAt.UTC().Format(time.RFC3339),
			Source:        rec.Source,
			ReportType:    rec.ReportType,
			Status:        rec.Status,
			Location:      rec.Location,
			RawText:       rec.RawText,
			Reconstructed: rec.Reconstructed,
			Issues:        rec.Issues,
		}
		if rec.ModelJSON != "" {
			cr.Model = json.RawMessage(rec.ModelJSON)
		}
		out = append(out, cr)
	}
	writeJSON(w, http.StatusOK, out)
}

// Helper functions.

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func typeAndHints(w http.ResponseWriter, typ string, opts map[string]string) (conversion.ReportType, *conversion.Hints, bool) {
	var t conversion.ReportType
	if typ != "" {
		parsed, err := conversion.ParseReportType(typ)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return "", nil, false
		}
		t = parsed
	}
	if len(opts) == 0 {
		return t, nil, true
	}
	h, err := conversion.HintsFromMap(opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}
	return t, &h, true
}

func referenceMonth(w http.ResponseWriter, s string) (*timeref.YearMonth, bool) {
	if s == "" {
		return nil, true
	}
	ym, err := timeref.ParseYearMonth(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &ym, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
