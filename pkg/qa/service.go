// Package qa is the question answering facade. A Service is built once at
// startup from a catalog and an engine, and is shared by every caller.
package qa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/papercomputeco/legalqa/pkg/answer"
	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/engine"
	"github.com/papercomputeco/legalqa/pkg/eventstream"
	"github.com/papercomputeco/legalqa/pkg/eventstream/nop"
	"github.com/papercomputeco/legalqa/pkg/history"
	"github.com/papercomputeco/legalqa/pkg/lexical"
	"github.com/papercomputeco/legalqa/pkg/logger"
)

// DefaultSourceLimit is the number of sources Retrieve returns.
const DefaultSourceLimit = 5

// Source is a retrieved article as shown next to an answer.
type Source struct {
	RecordID string  `json:"record_id"`
	Source   string  `json:"source"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// Health reports the service state.
type Health struct {
	Status       string `json:"status"`
	RAGReady     bool   `json:"rag_ready"`
	LLMAvailable bool   `json:"llm_available"`
	Engine       string `json:"engine"`
	Records      int    `json:"records"`
}

// Service answers questions over a catalog.
type Service struct {
	catalog     *corpus.Catalog
	engine      engine.Engine
	history     history.Driver
	assembler   *answer.Assembler
	publisher   eventstream.Publisher
	logger      *slog.Logger
	sourceLimit int
}

// Option configures a Service.
type Option func(*Service)

func WithCatalog(c *corpus.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithEngine sets the retrieval engine. Without it the service ranks the
// catalog with the lexical engine.
func WithEngine(e engine.Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithHistory sets the history driver. Without it nothing is recorded.
func WithHistory(d history.Driver) Option {
	return func(s *Service) {
		s.history = d
	}
}

func WithAssembler(a *answer.Assembler) Option {
	return func(s *Service) {
		s.assembler = a
	}
}

func WithPublisher(p eventstream.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithSourceLimit caps Retrieve. Non-positive values keep the default.
func WithSourceLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sourceLimit = n
		}
	}
}

// New builds a Service. A catalog is required.
func New(opts ...Option) (*Service, error) {
	s := &Service{sourceLimit: DefaultSourceLimit}
	for _, opt := range opts {
		opt(s)
	}

	if s.catalog == nil {
		return nil, errors.New("qa service requires a catalog")
	}
	if s.engine == nil {
		s.engine = engine.NewLexical(lexical.NewIndex(s.catalog))
	}
	if s.assembler == nil {
		s.assembler = answer.New()
	}
	if s.publisher == nil {
		s.publisher = nop.NewPublisher()
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}

	s.logger.Info("question answering service ready",
		"records", s.catalog.Len(),
		"engine", s.engine.Name(),
		"history", s.history != nil,
	)
	return s, nil
}

func (s *Service) ready() bool {
	return s != nil && s.engine != nil && s.catalog != nil
}

type askConfig struct {
	record bool
}

// AskOption tunes a single Ask call.
type AskOption func(*askConfig)

// WithoutHistory answers without recording the exchange.
func WithoutHistory() AskOption {
	return func(c *askConfig) {
		c.record = false
	}
}

// Ask answers question from the catalog and records the exchange. Blank
// questions are not rejected here; see ValidateQuestion.
func (s *Service) Ask(ctx context.Context, question string, opts ...AskOption) (string, error) {
	if !s.ready() {
		return "", ErrNotReady
	}

	cfg := askConfig{record: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	ans, candidates, relevant, err := s.answer(ctx, question)
	if err != nil {
		return "", err
	}

	var sequence int64
	if cfg.record && s.history != nil {
		entry, err := s.history.Append(ctx, question, ans)
		if err != nil {
			s.logger.Error("recording history failed", "error", err)
			return "", &InternalError{Message: err.Error(), Err: err}
		}
		sequence = entry.ID
	}

	s.publish(ctx, eventstream.NewExchangeEvent(sequence, question, ans, relevant, s.engine.Name()))

	s.logger.Debug("question answered",
		"candidates", candidates,
		"relevant", relevant,
		"sequence", sequence,
	)
	return ans, nil
}

// answer retrieves every candidate and assembles the reply. A panic in the
// engine or the assembler becomes an InternalError.
func (s *Service) answer(ctx context.Context, question string) (ans string, candidates, relevant int, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while answering", "panic", r)
			ans, candidates, relevant, err = "", 0, 0, &InternalError{Message: fmt.Sprint(r)}
		}
	}()

	results, err := s.engine.Retrieve(ctx, question, 0)
	if err != nil {
		s.logger.Error("retrieval failed", "engine", s.engine.Name(), "error", err)
		return "", 0, 0, &InternalError{Message: err.Error(), Err: err}
	}

	ans = s.assembler.Assemble(question, results)
	return ans, len(results), len(s.assembler.Relevant(results)), nil
}

// publish sends event once the exchange is settled. Neither an error nor a
// panic from the publisher reaches the caller.
func (s *Service) publish(ctx context.Context, event *eventstream.ExchangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while publishing exchange event", "event_id", event.EventID, "panic", r)
		}
	}()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publishing exchange event failed", "event_id", event.EventID, "error", err)
	}
}

// Retrieve returns the best sources for question, at most the source limit.
func (s *Service) Retrieve(ctx context.Context, question string) ([]Source, error) {
	if !s.ready() {
		return nil, ErrNotReady
	}

	results, err := s.engine.Retrieve(ctx, question, s.sourceLimit)
	if err != nil {
		return nil, &InternalError{Message: err.Error(), Err: err}
	}

	sources := make([]Source, len(results))
	for i, r := range results {
		sources[i] = Source{
			RecordID: r.RecordID,
			Source:   r.Source,
			Title:    r.Title,
			Content:  r.Content,
			Score:    r.Score,
		}
	}
	return sources, nil
}

// RelevantFloor is the score a source needs to count as highly relevant.
func (s *Service) RelevantFloor() float64 {
	if s == nil || s.assembler == nil {
		return answer.DefaultRelevantFloor
	}
	return s.assembler.RelevantFloor()
}

// Health is safe on a nil Service, which reports not ready.
func (s *Service) Health() Health {
	h := Health{Status: "ok", LLMAvailable: true}
	if !s.ready() {
		return h
	}
	h.RAGReady = true
	h.Engine = s.engine.Name()
	h.Records = s.catalog.Len()
	return h
}

// History returns at most limit of the latest entries, oldest first. It is
// empty when no history driver is configured.
func (s *Service) History(ctx context.Context, limit int) ([]*history.Entry, error) {
	if !s.ready() {
		return nil, ErrNotReady
	}
	if s.history == nil {
		return []*history.Entry{}, nil
	}
	return s.history.List(ctx, limit)
}

// ClearHistory discards every recorded exchange.
func (s *Service) ClearHistory(ctx context.Context) error {
	if !s.ready() {
		return ErrNotReady
	}
	if s.history == nil {
		return nil
	}
	return s.history.Clear(ctx)
}

// Close releases the history driver, the publisher and the engine when it
// holds resources.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.history != nil {
		errs = append(errs, s.history.Close())
	}
	errs = append(errs, s.publisher.Close())
	if c, ok := s.engine.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
