// Package indexcmder provides the index command, which embeds the corpus into
// the configured vector store ahead of serving with the embedding engine.
package indexcmder

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/cmd/legalqa/bootstrap"
	"github.com/papercomputeco/legalqa/pkg/cliui"
	"github.com/papercomputeco/legalqa/pkg/config"
	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/indexer"
	"github.com/papercomputeco/legalqa/pkg/logger"
)

type indexCommander struct {
	dataDir          string
	vectorProvider   string
	vectorTarget     string
	embedderProvider string
	embedderTarget   string
	embedderModel    string
	dimensions       uint
	workers          uint

	cfg       *config.Config
	configDir string
	debug     bool
	out       io.Writer
}

const indexLongDesc string = `Embed the corpus into the vector store.

Each record is embedded from its title and content and written with a
checksum. Records whose checksum is unchanged since the last run are skipped,
so running index again after editing a few articles only embeds those.

Examples:
  legalqa index
  legalqa index --vector-store-provider qdrant --vector-store-target localhost:6334
  legalqa index --embedding-model nomic-embed-text --embedding-dimensions 768`

const indexShortDesc string = "Embed the corpus into the vector store"

var indexFlags = []string{
	config.FlagDataDir,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

func NewIndexCmd() *cobra.Command {
	cmder := &indexCommander{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: indexShortDesc,
		Long:  indexLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Registry, indexFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.out = cmd.OutOrStdout()

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagDataDir, &cmder.dataDir)
	config.AddStringFlag(cmd, config.Registry, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, config.Registry, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, config.Registry, config.FlagEmbeddingProv, &cmder.embedderProvider)
	config.AddStringFlag(cmd, config.Registry, config.FlagEmbeddingTgt, &cmder.embedderTarget)
	config.AddStringFlag(cmd, config.Registry, config.FlagEmbeddingModel, &cmder.embedderModel)
	config.AddUintFlag(cmd, config.Registry, config.FlagEmbeddingDims, &cmder.dimensions)
	cmd.Flags().UintVarP(&cmder.workers, "workers", "w", 3, "Number of concurrent embedding calls")

	return cmd
}

func (c *indexCommander) run(ctx context.Context) error {
	log := logger.Nop()
	if c.debug {
		log = logger.New(logger.WithDebug(true), logger.WithPretty(true), logger.WithWriter(os.Stderr))
	}
	opts := &bootstrap.Options{Config: c.cfg, ConfigDir: c.configDir, Logger: log}

	var (
		catalog *corpus.Catalog
		report  corpus.Report
	)
	_ = cliui.Step(c.out, "Loading corpus", func() error {
		catalog, report = bootstrap.LoadCatalog(c.cfg, log)
		return nil
	})
	if report.Fallback {
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render("no readable article, indexing built-in records"))
	}

	embedder, store, err := bootstrap.NewEmbeddingBackend(ctx, opts)
	if err != nil {
		return err
	}
	defer embedder.Close()
	defer store.Close()

	pool, err := bootstrap.NewIndexer(embedder, store, c.workers, log)
	if err != nil {
		return err
	}

	var stats indexer.Stats
	err = cliui.Step(c.out, fmt.Sprintf("Embedding %d records", catalog.Len()), func() error {
		var indexErr error
		stats, indexErr = pool.Index(ctx, catalog)
		return indexErr
	})

	fmt.Fprintf(c.out, "\n  %s %d  %s %d  %s %d  %s %d\n\n",
		cliui.KeyStyle.Render("total"), stats.Total,
		cliui.KeyStyle.Render("embedded"), stats.Embedded,
		cliui.KeyStyle.Render("skipped"), stats.Skipped,
		cliui.KeyStyle.Render("failed"), stats.Failed,
	)

	return err
}
