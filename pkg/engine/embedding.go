package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/legalqa/pkg/embeddings"
	"github.com/papercomputeco/legalqa/pkg/lexical"
	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/vector"
)

// Embedding ranks records by cosine similarity between the question
// embedding and stored article embeddings. Results have the same shape and
// candidate floor as the lexical engine.
type Embedding struct {
	index    *lexical.Index
	embedder embeddings.Embedder
	store    vector.Driver
	logger   *slog.Logger
}

// NewEmbedding wires an embedder and a vector store to the catalog index used
// for titles and sources.
func NewEmbedding(index *lexical.Index, embedder embeddings.Embedder, store vector.Driver, log *slog.Logger) *Embedding {
	if log == nil {
		log = logger.Nop()
	}
	return &Embedding{index: index, embedder: embedder, store: store, logger: log}
}

func (e *Embedding) Name() string {
	return KindEmbedding
}

func (e *Embedding) Retrieve(ctx context.Context, query string, k int) ([]lexical.Result, error) {
	topK := k
	if topK <= 0 {
		topK = e.index.Len()
	}
	if topK == 0 {
		return []lexical.Result{}, nil
	}

	emb, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	hits, err := e.store.Query(ctx, emb, topK)
	if err != nil {
		return nil, fmt.Errorf("querying vector store: %w", err)
	}

	results := make([]lexical.Result, 0, len(hits))
	for _, hit := range hits {
		score := vector.Similarity(hit.Distance)
		if score <= e.index.CandidateFloor() {
			continue
		}
		r, ok := e.index.Lookup(hit.ID, score)
		if !ok {
			// Stale vector from a record no longer in the corpus.
			e.logger.Debug("skipping unknown record", "record_id", hit.ID)
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// Close releases the embedder and the vector store.
func (e *Embedding) Close() error {
	return errors.Join(e.embedder.Close(), e.store.Close())
}

var _ Engine = (*Embedding)(nil)
