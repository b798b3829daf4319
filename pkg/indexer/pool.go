// Package indexer embeds catalog records into a vector store using a pool of
// background workers.
//
// Records whose stored checksum matches their current title and content are
// skipped, so re-indexing an unchanged corpus issues no embedding calls.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/embeddings"
	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/vector"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultBatchSize    uint = 32
)

// Config is the configuration options for the indexing pool.
type Config struct {
	VectorDriver vector.Driver
	Embedder     embeddings.Embedder

	// NumWorkers is the number of concurrent embedding calls.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// BatchSize is the number of documents written per vector store call.
	BatchSize uint

	Logger *slog.Logger
}

// Stats summarizes one Index run.
type Stats struct {
	Total    int `json:"total"`
	Embedded int `json:"embedded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Pool embeds records concurrently and writes them in batches.
type Pool struct {
	config *Config
	logger *slog.Logger
}

type job struct {
	record   corpus.Record
	checksum string
}

type outcome struct {
	doc vector.Document
	err error
}

// NewPool validates c and applies defaults.
func NewPool(c *Config) (*Pool, error) {
	if c.VectorDriver == nil || c.Embedder == nil {
		return nil, errors.New("indexer requires a vector driver and an embedder")
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	return &Pool{config: c, logger: c.Logger}, nil
}

// Index embeds every changed record of catalog. Embedding failures are
// counted and logged; a vector store failure aborts the run.
func (p *Pool) Index(ctx context.Context, catalog *corpus.Catalog) (Stats, error) {
	records := catalog.Records()
	stats := Stats{Total: len(records)}
	if len(records) == 0 {
		return stats, nil
	}

	stored, err := p.storedChecksums(ctx, records)
	if err != nil {
		return stats, err
	}

	var pending []job
	for _, r := range records {
		sum := vector.Checksum(r.Title, r.Content)
		if stored[r.ID] == sum {
			continue
		}
		pending = append(pending, job{record: r, checksum: sum})
	}
	stats.Skipped = stats.Total - len(pending)
	if len(pending) == 0 {
		p.logger.Info("index up to date", "records", stats.Total)
		return stats, nil
	}

	jobs := make(chan job, p.config.QueueSize)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	wg.Add(int(p.config.NumWorkers))
	for i := range p.config.NumWorkers {
		go p.worker(ctx, i, jobs, outcomes, &wg)
	}

	go func() {
		defer close(jobs)
		for _, j := range pending {
			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var (
		batch    []vector.Document
		writeErr error
	)
	flush := func() {
		if len(batch) == 0 || writeErr != nil {
			return
		}
		if err := p.config.VectorDriver.Add(ctx, batch); err != nil {
			writeErr = fmt.Errorf("writing %d embeddings: %w", len(batch), err)
			return
		}
		stats.Embedded += len(batch)
		batch = nil
	}

	for o := range outcomes {
		if o.err != nil {
			stats.Failed++
			continue
		}
		batch = append(batch, o.doc)
		if uint(len(batch)) >= p.config.BatchSize {
			flush()
		}
	}
	flush()

	if writeErr != nil {
		return stats, writeErr
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	p.logger.Info("index built",
		"records", stats.Total,
		"embedded", stats.Embedded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}

func (p *Pool) storedChecksums(ctx context.Context, records []corpus.Record) (map[string]string, error) {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}

	docs, err := p.config.VectorDriver.Get(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("reading stored checksums: %w", err)
	}

	sums := make(map[string]string, len(docs))
	for _, d := range docs {
		sums[d.ID] = d.Checksum
	}
	return sums, nil
}

func (p *Pool) worker(ctx context.Context, id uint, jobs <-chan job, out chan<- outcome, wg *sync.WaitGroup) {
	defer wg.Done()
	p.logger.Debug("index worker started", "worker_id", id)

	for j := range jobs {
		text := j.record.Title + "\n" + j.record.Content
		emb, err := p.config.Embedder.Embed(ctx, text)
		if err != nil {
			p.logger.Error("embedding failed", "record_id", j.record.ID, "error", err)
		}
		out <- outcome{
			doc: vector.Document{ID: j.record.ID, Checksum: j.checksum, Embedding: emb},
			err: err,
		}
	}

	p.logger.Debug("index worker stopped", "worker_id", id)
}
