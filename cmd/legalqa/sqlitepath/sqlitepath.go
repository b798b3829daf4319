// Package sqlitepath locates the SQLite files legalqa keeps next to its
// config: the history database and the sqlite-vec vector index.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/legalqa/pkg/dotdir"
)

const (
	HistoryFile = "history.db"
	VectorsFile = "vectors.db"
)

// ResolveHistoryPath returns the history database path. See Resolve.
func ResolveHistoryPath(override, configDir string) (string, error) {
	return Resolve(override, configDir, "LEGALQA_HISTORY_DB", HistoryFile)
}

// ResolveVectorPath returns the sqlite-vec database path. See Resolve.
func ResolveVectorPath(override, configDir string) (string, error) {
	return Resolve(override, configDir, "LEGALQA_VECTORS_DB", VectorsFile)
}

// Resolve picks a database path in this order: override, the env variable,
// the first existing candidate file, then a new file inside the .legalqa/
// directory (created under the home directory when none exists). A relative
// override is taken relative to the .legalqa/ directory when there is one.
func Resolve(override, configDir, envKey, name string) (string, error) {
	if override != "" {
		return dotdir.NewManager().Resolve(configDir, override)
	}

	if envPath := strings.TrimSpace(os.Getenv(envKey)); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range candidates(configDir, name) {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	dir, err := dotdir.NewManager().Ensure(configDir)
	if err != nil {
		return "", fmt.Errorf("could not resolve %s location: %w", name, err)
	}
	return filepath.Join(dir, name), nil
}

func candidates(configDir, name string) []string {
	var out []string
	if configDir != "" {
		out = append(out, filepath.Join(configDir, name))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		out = append(out, filepath.Join(xdgHome, "legalqa", name))
	}

	out = append(out, filepath.Join(".legalqa", name))

	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".legalqa", name))
	}

	return out
}
