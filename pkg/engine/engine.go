// Package engine provides the retrieval strategies behind question answering.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/legalqa/pkg/lexical"
	"github.com/papercomputeco/legalqa/pkg/logger"
)

const (
	KindLexical   = "lexical"
	KindEmbedding = "embedding"
)

// ErrUnknownKind is returned by Select for an unsupported engine kind.
var ErrUnknownKind = errors.New("unknown engine kind")

// Engine ranks catalog records against a question.
type Engine interface {
	// Name identifies the engine in health reports and events.
	Name() string

	// Retrieve returns the candidates above the candidate floor, best first.
	// k <= 0 returns every candidate.
	Retrieve(ctx context.Context, query string, k int) ([]lexical.Result, error)
}

// Lexical is the word-overlap engine. It never fails.
type Lexical struct {
	index *lexical.Index
}

func NewLexical(index *lexical.Index) *Lexical {
	return &Lexical{index: index}
}

func (l *Lexical) Name() string {
	return KindLexical
}

func (l *Lexical) Retrieve(_ context.Context, query string, k int) ([]lexical.Result, error) {
	return l.index.Retrieve(query, k), nil
}

// Builder constructs the embedding engine on demand.
type Builder func() (*Embedding, error)

// Select returns the engine for kind. When the embedding engine cannot be
// built, the failure is logged once and the lexical engine is returned.
func Select(kind string, index *lexical.Index, build Builder, log *slog.Logger) (Engine, error) {
	if log == nil {
		log = logger.Nop()
	}

	switch kind {
	case "", KindLexical:
		return NewLexical(index), nil
	case KindEmbedding:
		if build == nil {
			log.Warn("embedding engine not configured, using lexical engine")
			return NewLexical(index), nil
		}
		e, err := build()
		if err != nil {
			log.Warn("embedding engine unavailable, using lexical engine", "error", err)
			return NewLexical(index), nil
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

var _ Engine = (*Lexical)(nil)
