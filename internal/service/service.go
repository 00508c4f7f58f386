// Package service runs TAC conversions on behalf of the HTTP API, the NATS
// feed and the CLI, recording metrics and archiving results.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/observability"
	"tac_converter/internal/storage"
	"tac_converter/internal/tac"
	"tac_converter/internal/timeref"
)

// ErrEmptyText is returned for a request without message text.
var ErrEmptyText = errors.New("message text is empty")

// ErrUnknownType is returned when no report type is given and none can be
// detected from the text.
var ErrUnknownType = errors.New("cannot determine the report type")

// Request is one message to convert.
type Request struct {
	Text string
	Type conversion.ReportType // detected when empty
	// Hints override the service defaults when set.
	Hints *conversion.Hints
	// ReferenceMonth completes partial times; the current UTC month when nil.
	ReferenceMonth *timeref.YearMonth
	Source         string
}

// Response is the outcome of a conversion.
type Response struct {
	ReportType     conversion.ReportType `json:"report_type,omitempty"`
	Status         conversion.Status     `json:"status"`
	Issues         []conversion.Issue    `json:"issues,omitempty"`
	ReferenceMonth string                `json:"reference_month"`
	Model          model.Report          `json:"model,omitempty"`
	Reconstructed  string                `json:"reconstructed,omitempty"`
	ArchiveID      int64                 `json:"archive_id,omitempty"`
}

// Service converts messages. It is safe for concurrent use.
type Service struct {
	conv    *tac.Converter
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	store   storage.Store
	hints   conversion.Hints
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock that supplies the default reference month.
func WithClock(c clockwork.Clock) Option { return func(s *Service) { s.clock = c } }

// WithStore archives every conversion in st.
func WithStore(st storage.Store) Option { return func(s *Service) { s.store = st } }

// WithHints sets the hints used when a request carries none.
func WithHints(h conversion.Hints) Option { return func(s *Service) { s.hints = h } }

// New creates a Service.
func New(logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		conv:    tac.NewConverter(),
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
		hints:   conversion.DefaultHints(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the archive, or nil when archiving is disabled.
func (s *Service) Store() storage.Store { return s.store }

func (s *Service) hintsFor(h *conversion.Hints) conversion.Hints {
	if h != nil {
		return *h
	}
	return s.hints
}

// Convert parses, time-resolves and reconstructs one message. Conversion
// problems are reported as issues in the response; an error is returned
// only for an unusable request.
func (s *Service) Convert(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source := req.Source
	if source == "" {
		source = "cli"
	}
	s.metrics.MessagesReceived.WithLabelValues(source).Inc()

	start := s.clock.Now()
	ym := timeref.YearMonthOf(start)
	if req.ReferenceMonth != nil {
		ym = *req.ReferenceMonth
	}
	hints := s.hintsFor(req.Hints)

	res := s.conv.ParseResolved(req.Text, req.Type, hints, ym)
	resp := &Response{
		Status:         res.Status(),
		Issues:         res.Issues,
		ReferenceMonth: ym.String(),
		Model:          res.Value,
	}
	typeLabel := "UNKNOWN"
	if res.Value != nil {
		resp.ReportType = res.Value.ReportType()
		typeLabel = string(resp.ReportType)
		resp.Reconstructed = s.reconstruct(res.Value, hints)
	}

	s.metrics.ConvertDuration.WithLabelValues(typeLabel).Observe(s.clock.Since(start).Seconds())
	s.metrics.Conversions.WithLabelValues(typeLabel, string(resp.Status)).Inc()
	for _, issue := range resp.Issues {
		s.metrics.Issues.WithLabelValues(string(issue.Kind)).Inc()
	}

	s.logger.Debug("converted message",
		"source", source,
		"report_type", typeLabel,
		"status", resp.Status,
		"issues", len(resp.Issues),
	)

	if s.store != nil {
		resp.ArchiveID = s.archive(ctx, source, req.Text, resp)
	}
	return resp, nil
}

func (s *Service) reconstruct(r model.Report, h conversion.Hints) string {
	text, err := s.conv.Reconstruct(r, h)
	if err != nil {
		s.metrics.Reconstructions.WithLabelValues("error").Inc()
		s.logger.Debug("model not reconstructable", "report_type", r.ReportType(), "error", err)
		return ""
	}
	s.metrics.Reconstructions.WithLabelValues("success").Inc()
	return text
}

func (s *Service) archive(ctx context.Context, source, text string, resp *Response) int64 {
	rec := &storage.Record{
		ReceivedAt:    s.clock.Now().UTC(),
		Source:        source,
		ReportType:    string(resp.ReportType),
		Status:        string(resp.Status),
		Location:      Location(resp.Model),
		RawText:       text,
		Reconstructed: resp.Reconstructed,
		Issues:        resp.Issues,
	}
	if resp.Model != nil {
		b, err := json.Marshal(resp.Model)
		if err != nil {
			s.logger.Warn("failed to encode model for archive", "error", err)
		} else {
			rec.ModelJSON = string(b)
		}
	}

	id, err := s.store.Save(ctx, rec)
	if err != nil {
		s.metrics.StoreErrors.Inc()
		s.logger.Error("failed to archive conversion", "report_type", rec.ReportType, "error", err)
		return 0
	}
	return id
}

// Reconstruct renders a model as TAC text.
func (s *Service) Reconstruct(r model.Report, h *conversion.Hints) (string, error) {
	text, err := s.conv.Reconstruct(r, s.hintsFor(h))
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.Reconstructions.WithLabelValues(outcome).Inc()
	return text, err
}

// Resolve completes the partial times of r in ym, or in the current month
// when ym is nil.
func (s *Service) Resolve(r model.Report, ym *timeref.YearMonth) (timeref.YearMonth, error) {
	month := timeref.YearMonthOf(s.clock.Now())
	if ym != nil {
		month = *ym
	}
	return month, s.conv.ResolveTimes(r, month)
}

// Tokenize exposes the lexeme sequence of text for inspection.
func (s *Service) Tokenize(text string, t conversion.ReportType, h *conversion.Hints) (TokenizeResult, error) {
	if strings.TrimSpace(text) == "" {
		return TokenizeResult{}, ErrEmptyText
	}
	if t == "" {
		detected, ok := conversion.DetectReportType(text)
		if !ok {
			return TokenizeResult{}, ErrUnknownType
		}
		t = detected
	}
	seq, issues, err := s.conv.Tokenize(text, t, s.hintsFor(h))
	if err != nil {
		return TokenizeResult{}, err
	}
	out := TokenizeResult{ReportType: t, Issues: issues}
	for _, l := range seq.All() {
		out.Lexemes = append(out.Lexemes, Lexeme{
			Raw:      l.Raw(),
			Identity: string(l.Identity()),
			Values:   l.Values(),
		})
	}
	return out, nil
}

// TokenizeResult lists the recognised lexemes of a message.
type TokenizeResult struct {
	ReportType conversion.ReportType `json:"report_type"`
	Lexemes    []Lexeme              `json:"lexemes"`
	Issues     []conversion.Issue    `json:"issues,omitempty"`
}

// Lexeme is the JSON view of one recognised lexeme.
type Lexeme struct {
	Raw      string        `json:"raw"`
	Identity string        `json:"identity"`
	Values   lexeme.Values `json:"values,omitempty"`
}

// DecodeReport decodes a JSON model of report type t.
func DecodeReport(t conversion.ReportType, data []byte) (model.Report, error) {
	var r model.Report
	switch t {
	case conversion.METAR, conversion.SPECI:
		r = &model.METAR{}
	case conversion.TAF:
		r = &model.TAF{}
	case conversion.SIGMET, conversion.AIRMET:
		r = &model.SIGMET{}
	default:
		return nil, fmt.Errorf("unsupported report type %q", t)
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("decode %s model: %w", t, err)
	}
	switch v := r.(type) {
	case *model.METAR:
		if v.Type == "" {
			v.Type = t
		}
	case *model.SIGMET:
		if v.Type == "" {
			v.Type = t
		}
	}
	return r, nil
}

// Location returns the aerodrome or FIR a report is about.
func Location(r model.Report) string {
	switch v := r.(type) {
	case *model.METAR:
		return v.Aerodrome
	case *model.TAF:
		return v.Aerodrome
	case *model.SIGMET:
		return v.FIR
	}
	return ""
}
