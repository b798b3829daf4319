// Package initcmder provides the init command for initializing a local
// .legalqa directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/pkg/config"
)

const (
	dirName    = ".legalqa"
	configFile = "config.toml"
)

const initLongDesc string = `Initialize a new .legalqa/ directory in the current working directory.

Creates a local .legalqa/ directory that takes precedence over the default
~/.legalqa/ directory for configuration and the SQLite history and vector
databases. With --preset, a config.toml for that preset is written unless one
already exists.

Presets:
  local        In-memory history, lexical engine (the defaults)
  persistent   SQLite history in .legalqa/history.db
  semantic     SQLite history and the embedding engine over sqlite-vec

Examples:
  legalqa init
  legalqa init --preset persistent`

const initShortDesc string = "Initialize a local .legalqa/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runInit(cmd.OutOrStdout(), configDir, preset)
		},
	}

	cmd.Flags().StringVarP(&preset, "preset", "p", "",
		"Write a config.toml preset ("+strings.Join(config.ValidPresetNames(), ", ")+")")

	return cmd
}

func runInit(w io.Writer, configDir, preset string) error {
	var cfg *config.Config
	if preset != "" {
		var err error
		cfg, err = config.PresetConfig(preset)
		if err != nil {
			return err
		}
	}

	dir := configDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .legalqa directory: %w", err)
		}
		fmt.Fprintf(w, "Initialized .legalqa directory: %s\n", dir)
	}

	if cfg == nil {
		return nil
	}

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "Keeping existing config: %s\n", path)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s preset: %s\n", preset, path)
	return nil
}
