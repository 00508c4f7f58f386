// Package feed consumes raw TAC messages from NATS and publishes the
// converted results.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"tac_converter/internal/conversion"
	"tac_converter/internal/observability"
	"tac_converter/internal/service"
	"tac_converter/internal/timeref"
)

// Envelope is the JSON feed format: the TAC text nested inside "message"
// with source metadata at the top level. A flat {"text": ...} object and a
// bare TAC payload are accepted too.
type Envelope struct {
	Source  *Source `json:"source,omitempty"`
	Message *Inner  `json:"message,omitempty"`

	// Flat form.
	Text           string `json:"text,omitempty"`
	Type           string `json:"type,omitempty"`
	ReferenceMonth string `json:"reference_month,omitempty"`
}

// Source identifies who sent a message.
type Source struct {
	Name        string `json:"name,omitempty"`
	Application string `json:"application,omitempty"`
}

// Inner is the nested message of an Envelope.
type Inner struct {
	ID             string `json:"id,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
	Type           string `json:"type,omitempty"`
	Text           string `json:"text"`
	ReferenceMonth string `json:"reference_month,omitempty"`
}

// Message is a decoded feed message.
type Message struct {
	ID             string
	Text           string
	Type           conversion.ReportType
	ReferenceMonth *timeref.YearMonth
	Source         string
}

// ErrNoText is returned for a feed message without TAC text.
var ErrNoText = errors.New("feed message has no text")

// Decode reads a feed payload in any of the accepted forms.
func Decode(data []byte) (*Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoText
	}
	if data[0] != '{' {
		return &Message{Text: string(data)}, nil
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode feed message: %w", err)
	}

	msg := &Message{Text: env.Text}
	typ, month := env.Type, env.ReferenceMonth
	if env.Message != nil {
		msg.ID = env.Message.ID
		msg.Text = env.Message.Text
		typ, month = env.Message.Type, env.Message.ReferenceMonth
		if month == "" && env.Message.Timestamp != "" {
			// Reference month from the envelope timestamp.
			if ts, err := time.Parse(time.RFC3339, env.Message.Timestamp); err == nil {
				month = timeref.YearMonthOf(ts).String()
			}
		}
	}
	if env.Source != nil {
		msg.Source = env.Source.Name
	}
	if msg.Text == "" {
		return nil, ErrNoText
	}

	if typ != "" {
		t, err := conversion.ParseReportType(typ)
		if err != nil {
			return nil, err
		}
		msg.Type = t
	}
	if month != "" {
		ym, err := timeref.ParseYearMonth(month)
		if err != nil {
			return nil, err
		}
		msg.ReferenceMonth = &ym
	}
	return msg, nil
}

// Output is the JSON published for each converted message.
type Output struct {
	ID     string `json:"id,omitempty"`
	Origin string `json:"origin,omitempty"`
	*service.Response
}

// Converter converts one message.
type Converter interface {
	Convert(ctx context.Context, req service.Request) (*service.Response, error)
}

// Publisher publishes converted messages. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subscriber converts messages arriving on a subject.
type Subscriber struct {
	conv       Converter
	pub        Publisher
	outSubject string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewSubscriber creates a Subscriber. Results are published on outSubject
// when pub is non-nil and outSubject is not empty.
func NewSubscriber(conv Converter, pub Publisher, outSubject string, logger *slog.Logger, metrics *observability.Metrics) *Subscriber {
	return &Subscriber{
		conv:       conv,
		pub:        pub,
		outSubject: outSubject,
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle converts one feed payload and publishes the result.
func (s *Subscriber) Handle(ctx context.Context, data []byte) error {
	msg, err := Decode(data)
	if err != nil {
		return err
	}

	resp, err := s.conv.Convert(ctx, service.Request{
		Text:           msg.Text,
		Type:           msg.Type,
		ReferenceMonth: msg.ReferenceMonth,
		Source:         "nats",
	})
	if err != nil {
		return fmt.Errorf("convert message %s: %w", msg.ID, err)
	}

	if s.pub == nil || s.outSubject == "" {
		return nil
	}
	out, err := json.Marshal(Output{ID: msg.ID, Origin: msg.Source, Response: resp})
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if err := s.pub.Publish(s.outSubject, out); err != nil {
		return fmt.Errorf("publish to %s: %w", s.outSubject, err)
	}
	return nil
}

// Connect dials the NATS server at url.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("tac-converter"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return nc, nil
}

// Run subscribes to subject on nc and handles messages until ctx is done.
// Handling errors are logged and do not stop the subscriber.
func (s *Subscriber) Run(ctx context.Context, nc *nats.Conn, subject string) error {
	ch := make(chan *nats.Msg, 256)
	sub, err := nc.ChanSubscribe(subject, ch)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	s.metrics.SubscriberRunning.Set(1)
	defer s.metrics.SubscriberRunning.Set(0)
	s.logger.Info("subscribed", "subject", subject, "output_subject", s.outSubject)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscriber stopped", "subject", subject)
			return nil
		case m := <-ch:
			if err := s.Handle(ctx, m.Data); err != nil {
				s.logger.Warn("failed to handle feed message", "subject", m.Subject, "error", err)
			}
		}
	}
}
