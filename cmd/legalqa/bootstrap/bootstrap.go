// Package bootstrap assembles a qa.Service and its backends from a resolved
// config.Config. It is shared by serve, index and ask --local.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/papercomputeco/legalqa/cmd/legalqa/sqlitepath"
	"github.com/papercomputeco/legalqa/pkg/answer"
	"github.com/papercomputeco/legalqa/pkg/config"
	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/legalqa/pkg/embeddings/utils"
	"github.com/papercomputeco/legalqa/pkg/engine"
	"github.com/papercomputeco/legalqa/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/legalqa/pkg/eventstream/utils"
	"github.com/papercomputeco/legalqa/pkg/history"
	historyutils "github.com/papercomputeco/legalqa/pkg/history/utils"
	"github.com/papercomputeco/legalqa/pkg/indexer"
	"github.com/papercomputeco/legalqa/pkg/lexical"
	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/qa"
	"github.com/papercomputeco/legalqa/pkg/vector"
	vectorutils "github.com/papercomputeco/legalqa/pkg/vector/utils"
)

const (
	defaultQdrantTarget = "localhost:6334"
	defaultChromaTarget = "http://localhost:8000"
)

// Options controls which backends NewService wires.
type Options struct {
	Config    *config.Config
	ConfigDir string
	Logger    *slog.Logger

	// NoHistory skips the history driver entirely.
	NoHistory bool

	// NoEvents forces the nop publisher.
	NoEvents bool
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return logger.Nop()
	}
	return o.Logger
}

// LoadCatalog loads the configured corpus directory. The loader itself falls
// back to the built-in records when nothing is readable.
func LoadCatalog(cfg *config.Config, log *slog.Logger) (*corpus.Catalog, corpus.Report) {
	return corpus.NewLoader(corpus.WithLogger(log)).Load(cfg.Corpus.DataDir)
}

// NewIndex builds the lexical index with the configured floor and corpus name.
func NewIndex(cfg *config.Config, catalog *corpus.Catalog) *lexical.Index {
	return lexical.NewIndex(catalog,
		lexical.WithCandidateFloor(cfg.Retrieval.CandidateFloor),
		lexical.WithCorpusName(cfg.Corpus.Name),
	)
}

// NewEmbeddingBackend opens the embedder and the vector store. The caller
// owns both and must close them.
func NewEmbeddingBackend(ctx context.Context, o *Options) (embeddings.Embedder, vector.Driver, error) {
	cfg := o.Config

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	target, err := vectorTarget(cfg, o.ConfigDir)
	if err != nil {
		_ = embedder.Close()
		return nil, nil, err
	}

	store, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       target,
		Collection:   cfg.VectorStore.Collection,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       o.logger(),
	})
	if err != nil {
		_ = embedder.Close()
		return nil, nil, fmt.Errorf("creating vector store: %w", err)
	}

	return embedder, store, nil
}

func vectorTarget(cfg *config.Config, configDir string) (string, error) {
	target := cfg.VectorStore.Target
	switch cfg.VectorStore.Provider {
	case vectorutils.ProviderSQLite:
		path, err := sqlitepath.ResolveVectorPath(target, configDir)
		if err != nil {
			return "", fmt.Errorf("resolving vector database: %w", err)
		}
		return path, nil
	case vectorutils.ProviderQdrant:
		if target == "" {
			return defaultQdrantTarget, nil
		}
	case vectorutils.ProviderChroma:
		if target == "" {
			return defaultChromaTarget, nil
		}
	}
	return target, nil
}

// NewIndexer returns a worker pool writing into store. Zero workers uses the
// pool default.
func NewIndexer(embedder embeddings.Embedder, store vector.Driver, workers uint, log *slog.Logger) (*indexer.Pool, error) {
	return indexer.NewPool(&indexer.Config{
		VectorDriver: store,
		Embedder:     embedder,
		NumWorkers:   workers,
		Logger:       log,
	})
}

// NewHistory opens the configured history driver, or returns nil when history
// is disabled.
func NewHistory(ctx context.Context, o *Options) (history.Driver, error) {
	cfg := o.Config
	if o.NoHistory || cfg.History.Disabled {
		return nil, nil
	}

	sqlitePath := ""
	if cfg.History.Provider == config.HistorySQLite {
		var err error
		sqlitePath, err = sqlitepath.ResolveHistoryPath(cfg.History.SQLitePath, o.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("resolving history database: %w", err)
		}
	}

	driver, err := historyutils.NewDriver(ctx, &historyutils.NewDriverOpts{
		ProviderType: cfg.History.Provider,
		SQLitePath:   sqlitePath,
		PostgresDSN:  cfg.History.PostgresDSN,
	})
	if err != nil {
		return nil, fmt.Errorf("creating history store: %w", err)
	}

	o.logger().Info("using history store", "provider", cfg.History.Provider, "path", sqlitePath)
	return driver, nil
}

// NewPublisher returns the configured exchange event publisher.
func NewPublisher(o *Options) (eventstream.Publisher, error) {
	provider := o.Config.Events.Provider
	if o.NoEvents {
		provider = eventstreamutils.ProviderNop
	}

	return eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: provider,
		Brokers:      SplitBrokers(o.Config.Events.Brokers),
		Topic:        o.Config.Events.Topic,
		Logger:       o.logger(),
	})
}

// SplitBrokers parses a comma separated broker list, dropping blanks.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewService loads the corpus and wires every backend into a qa.Service.
// When the embedding engine is configured, the catalog is indexed before the
// engine is used; unchanged records are skipped.
func NewService(ctx context.Context, o *Options) (*qa.Service, corpus.Report, error) {
	cfg := o.Config
	log := o.logger()

	catalog, report := LoadCatalog(cfg, log)
	index := NewIndex(cfg, catalog)

	build := func() (*engine.Embedding, error) {
		embedder, store, err := NewEmbeddingBackend(ctx, o)
		if err != nil {
			return nil, err
		}

		pool, err := NewIndexer(embedder, store, 0, log)
		if err == nil {
			_, err = pool.Index(ctx, catalog)
		}
		if err != nil {
			return nil, errors.Join(err, embedder.Close(), store.Close())
		}

		return engine.NewEmbedding(index, embedder, store, log), nil
	}

	eng, err := engine.Select(cfg.Engine.Kind, index, build, log)
	if err != nil {
		return nil, report, err
	}

	historyDriver, err := NewHistory(ctx, o)
	if err != nil {
		closeBackends(eng, nil, nil)
		return nil, report, err
	}

	publisher, err := NewPublisher(o)
	if err != nil {
		closeBackends(eng, historyDriver, nil)
		return nil, report, fmt.Errorf("creating event publisher: %w", err)
	}

	opts := []qa.Option{
		qa.WithCatalog(catalog),
		qa.WithEngine(eng),
		qa.WithAssembler(answer.New(answer.WithRelevantFloor(cfg.Retrieval.RelevantFloor))),
		qa.WithPublisher(publisher),
		qa.WithSourceLimit(cfg.Retrieval.SourceLimit),
		qa.WithLogger(log),
	}
	if historyDriver != nil {
		opts = append(opts, qa.WithHistory(historyDriver))
	}

	svc, err := qa.New(opts...)
	if err != nil {
		closeBackends(eng, historyDriver, publisher)
		return nil, report, err
	}
	return svc, report, nil
}

// closeBackends releases whatever NewService opened before failing. Nil
// arguments are skipped.
func closeBackends(e engine.Engine, h history.Driver, p eventstream.Publisher) {
	if c, ok := e.(io.Closer); ok {
		_ = c.Close()
	}
	if h != nil {
		_ = h.Close()
	}
	if p != nil {
		_ = p.Close()
	}
}
