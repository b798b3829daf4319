// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/vector"
)

const (
	// DefaultCollectionName is the collection article embeddings are kept in.
	DefaultCollectionName = "legalqa_articles"

	DefaultMaxRetries    = 5
	DefaultRetryDelay    = 500 * time.Millisecond
	DefaultMaxRetryDelay = 5 * time.Second

	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
)

// Driver implements vector.Driver using Chroma's REST API.
type Driver struct {
	baseURL      string
	collection   string
	collectionID string
	httpClient   *http.Client
	logger       *slog.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName defaults to DefaultCollectionName.
	CollectionName string

	// MaxRetries bounds the attempts made to reach Chroma at startup.
	MaxRetries int

	// RetryDelay is the first backoff delay. It doubles on every attempt up
	// to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewDriver connects to Chroma and resolves the collection, creating it with
// a cosine space when missing.
func NewDriver(c Config, log *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, errors.New("chroma URL is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if c.CollectionName == "" {
		c.CollectionName = DefaultCollectionName
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = DefaultMaxRetryDelay
	}

	d := &Driver{
		baseURL:    c.URL,
		collection: c.CollectionName,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     log,
	}

	var (
		err   error
		delay = c.RetryDelay
	)
	for attempt := 1; attempt <= c.MaxRetries; attempt++ {
		d.collectionID, err = d.getOrCreateCollection(context.Background())
		if err == nil {
			break
		}
		if attempt == c.MaxRetries {
			return nil, fmt.Errorf("%w: collection %q after %d attempts: %w", vector.ErrConnection, c.CollectionName, attempt, err)
		}
		log.Warn("chroma not ready, retrying", "attempt", attempt, "delay", delay, "error", err)
		time.Sleep(delay)
		delay = min(delay*2, c.MaxRetryDelay)
	}

	log.Info("connected to chroma",
		"url", c.URL,
		"collection", c.CollectionName,
		"collection_id", d.collectionID,
	)
	return d, nil
}

// do sends a JSON request and decodes a JSON response into out when out is
// not nil. Any status other than 200 or 201 is an error.
func (d *Driver) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	var col collection
	if err := d.do(ctx, http.MethodGet, collectionsPath+"/"+d.collection, nil, &col); err == nil {
		return col.ID, nil
	}

	req := createCollectionRequest{
		Name:     d.collection,
		Metadata: map[string]any{"hnsw:space": "cosine"},
	}
	if err := d.do(ctx, http.MethodPost, collectionsPath, req, &col); err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}
	return col.ID, nil
}

func (d *Driver) path(op string) string {
	return collectionsPath + "/" + d.collectionID + "/" + op
}

func checksumOf(meta map[string]any) string {
	if meta == nil {
		return ""
	}
	s, _ := meta["checksum"].(string)
	return s
}

// Add upserts documents with their embeddings.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	req := upsertRequest{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Metadatas:  make([]map[string]any, len(docs)),
	}
	for i, doc := range docs {
		req.IDs[i] = doc.ID
		req.Embeddings[i] = doc.Embedding
		req.Metadatas[i] = map[string]any{"checksum": doc.Checksum}
	}

	if err := d.do(ctx, http.MethodPost, d.path("upsert"), req, nil); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}

	d.logger.Debug("added documents to chroma", "count", len(docs))
	return nil
}

// Query finds the topK nearest documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = vector.DefaultTopK
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"metadatas", "distances", "embeddings"},
	}
	var resp queryResponse
	if err := d.do(ctx, http.MethodPost, d.path("query"), req, &resp); err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	// One query embedding, so only the first group is populated.
	results := make([]vector.QueryResult, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		r := vector.QueryResult{Document: vector.Document{ID: id}}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			r.Checksum = checksumOf(resp.Metadatas[0][i])
		}
		if len(resp.Embeddings) > 0 && i < len(resp.Embeddings[0]) {
			r.Embedding = resp.Embeddings[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			r.Distance = resp.Distances[0][i]
		}
		results = append(results, r)
	}

	d.logger.Debug("queried chroma", "results", len(results))
	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	req := getRequest{IDs: ids, Include: []string{"metadatas", "embeddings"}}
	var resp getResponse
	if err := d.do(ctx, http.MethodPost, d.path("get"), req, &resp); err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}

	docs := make([]vector.Document, len(resp.IDs))
	for i, id := range resp.IDs {
		docs[i].ID = id
		if i < len(resp.Metadatas) {
			docs[i].Checksum = checksumOf(resp.Metadatas[i])
		}
		if i < len(resp.Embeddings) {
			docs[i].Embedding = resp.Embeddings[i]
		}
	}
	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := d.do(ctx, http.MethodPost, d.path("delete"), deleteRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from chroma", "count", len(ids))
	return nil
}

func (d *Driver) Close() error {
	return nil
}

var _ vector.Driver = (*Driver)(nil)
