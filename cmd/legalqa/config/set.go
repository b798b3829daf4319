package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/pkg/cliui"
	"github.com/papercomputeco/legalqa/pkg/config"
	"github.com/papercomputeco/legalqa/pkg/dotdir"
)

const setLongDesc string = `Set a configuration value.

Writes the key to the config.toml file in the .legalqa/ directory, creating
the directory under your home when none exists. Values are validated for the
key's type: floors must lie in (0, 1), counts must be positive.

Examples:
  legalqa config set corpus.data_dir ./data
  legalqa config set history.provider sqlite
  legalqa config set retrieval.relevant_floor 0.2`

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Set a configuration value",
		Long:              setLongDesc,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
	}
}

func runSet(w io.Writer, key, value, configDir string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	dir, err := dotdir.NewManager().Ensure(configDir)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	printTarget(w, cfger)

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
