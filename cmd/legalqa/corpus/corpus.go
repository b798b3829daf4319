// Package corpuscmder provides the corpus command for inspecting the law text
// directory the server loads.
package corpuscmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/pkg/cliui"
	"github.com/papercomputeco/legalqa/pkg/config"
	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/utils"
)

// settleDelay groups the burst of events an editor emits for one save.
const settleDelay = 200 * time.Millisecond

type inspectCommander struct {
	dataDir string
	watch   bool
	records bool

	cfg    *config.Config
	debug  bool
	out    io.Writer
	logger *slog.Logger
}

const corpusLongDesc string = `Inspect the corpus directory.

The corpus is read from <data-dir>/texts/*.txt. Each file holds articles
separated by "=== ARTICLE ===" lines, with "Titre:" and "Contenu:" headers.`

const inspectLongDesc string = `Load the corpus and print a summary.

Use --records to list every record and --watch to inspect again whenever a
file under texts/ changes.

Examples:
  legalqa corpus inspect
  legalqa corpus inspect --data-dir ./data --records
  legalqa corpus inspect --watch`

func NewCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect the corpus",
		Long:  corpusLongDesc,
	}

	cmd.AddCommand(newInspectCmd())
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmder := &inspectCommander{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load the corpus and print a summary",
		Long:  inspectLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagDataDir})
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
			cmder.logger = logger.Nop()
			if cmder.debug {
				cmder.logger = logger.New(logger.WithDebug(true), logger.WithPretty(true), logger.WithWriter(os.Stderr))
			}

			if !cmder.watch {
				cmder.inspect()
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return cmder.watchLoop(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagDataDir, &cmder.dataDir)
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Inspect again whenever a corpus file changes")
	cmd.Flags().BoolVar(&cmder.records, "records", false, "List every record")

	return cmd
}

func (c *inspectCommander) inspect() corpus.Report {
	catalog, report := corpus.NewLoader(corpus.WithLogger(c.logger)).Load(c.cfg.Corpus.DataDir)

	fmt.Fprintf(c.out, "\n  %s %s\n",
		cliui.KeyStyle.Render("Corpus:"),
		cliui.ValueStyle.Render(filepath.Join(c.cfg.Corpus.DataDir, "texts")),
	)
	fmt.Fprintf(c.out, "  %s %d (%d skipped)\n", cliui.KeyStyle.Render("Files:"), report.Files, report.SkippedFiles)
	fmt.Fprintf(c.out, "  %s %d (%d without content)\n", cliui.KeyStyle.Render("Records:"), report.Records, report.Skipped)
	if report.Fallback {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.FailMark, cliui.DimStyle.Render("no readable article, using built-in records"))
	}

	if c.records {
		fmt.Fprintln(c.out)
		for _, r := range catalog.Records() {
			fmt.Fprintf(c.out, "  %s  %s\n",
				cliui.KeyStyle.Render(r.ID),
				cliui.ValueStyle.Render(utils.Truncate(utils.OneLine(r.Title), 60)),
			)
		}
	}
	fmt.Fprintln(c.out)

	return report
}

// watchLoop inspects once, then again after each settled burst of changes to
// a .txt file under texts/.
func (c *inspectCommander) watchLoop(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating corpus watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Join(c.cfg.Corpus.DataDir, "texts")
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	c.inspect()
	fmt.Fprintln(c.out, cliui.DimStyle.Render("  Watching for changes, press Ctrl+C to stop."))

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsCorpusEvent(event) {
				continue
			}
			c.logger.Debug("corpus file changed", "file", event.Name, "op", event.Op.String())
			settle = time.After(settleDelay)
		case <-settle:
			settle = nil
			c.inspect()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("corpus watcher error: %w", err)
		}
	}
}

// IsCorpusEvent reports whether event can change the loaded catalog.
func IsCorpusEvent(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".txt") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
