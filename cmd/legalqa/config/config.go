// Package configcmder provides the config command for managing persistent
// legalqa configuration stored in the .legalqa/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/pkg/cliui"
	"github.com/papercomputeco/legalqa/pkg/config"
)

const configLongDesc string = `Manage persistent legalqa configuration.

Configuration is stored as config.toml in the .legalqa/ directory and provides
default values for command flags. CLI flags and LEGALQA_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  corpus.data_dir, corpus.name,
  retrieval.candidate_floor, retrieval.relevant_floor, retrieval.source_limit,
  engine.kind,
  history.provider, history.sqlite_path, history.postgres_dsn,
  history.preview_chars, history.disabled,
  api.listen, api.static_dir, api.mcp_disabled,
  client.api_target,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  events.provider, events.brokers, events.topic

Examples:
  legalqa config set corpus.data_dir ./data
  legalqa config set engine.kind embedding
  legalqa config get retrieval.relevant_floor
  legalqa config list`

const configShortDesc string = "Manage persistent legalqa configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("%w\n\nValid keys: %s",
			&config.InvalidKeyError{Key: key}, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(w io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
