// Package vector stores article embeddings and answers nearest-neighbour
// queries over them.
package vector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Document is one article embedding as held by a vector store.
type Document struct {
	// ID is the corpus record id the embedding was computed from.
	ID string

	// Checksum fingerprints the title and content that were embedded. The
	// indexer compares it to skip records whose text did not change.
	Checksum string

	Embedding []float32
}

// QueryResult is a nearest-neighbour hit.
type QueryResult struct {
	Document

	// Distance is the cosine distance to the query embedding, 0 being identical.
	Distance float32
}

// Driver handles storage and retrieval of article embeddings.
type Driver interface {
	// Add stores documents with their embeddings. A document whose ID already
	// exists is replaced.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK nearest documents to the given embedding, closest
	// first.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs. Unknown IDs are skipped.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	Close() error
}

// DefaultTopK is used when a query asks for zero or fewer results.
const DefaultTopK = 10

// Checksum returns the hex sha256 of an article's title and content.
func Checksum(title, content string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Similarity converts a cosine distance into a score in [0, 1].
func Similarity(distance float32) float64 {
	s := 1 - float64(distance)
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
