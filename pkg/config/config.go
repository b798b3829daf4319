package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/legalqa/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// orderedKeys lists config keys in TOML section order.
var orderedKeys = []string{
	"corpus.data_dir",
	"corpus.name",
	"retrieval.candidate_floor",
	"retrieval.relevant_floor",
	"retrieval.source_limit",
	"engine.kind",
	"history.provider",
	"history.sqlite_path",
	"history.postgres_dsn",
	"history.preview_chars",
	"history.disabled",
	"api.listen",
	"api.static_dir",
	"api.mcp_disabled",
	"client.api_target",
	"vector_store.provider",
	"vector_store.target",
	"vector_store.collection",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"events.provider",
	"events.brokers",
	"events.topic",
}

// InvalidKeyError is returned when a config key is not supported.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("unknown config key: %q", e.Key)
}

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewConfiger resolves the .legalqa/ directory (see dotdir.Manager.Target)
// and prepares config.toml inside it for reading and writing.
func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// No .legalqa/ directory: LoadConfig returns defaults and SaveConfig errors.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the list of all supported configuration key names
// in a stable order matching the TOML section layout.
func ValidConfigKeys() []string {
	result := make([]string, 0, len(configKeys))
	seen := make(map[string]bool, len(configKeys))
	for _, k := range orderedKeys {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
			seen[k] = true
		}
	}
	for k := range configKeys {
		if !seen[k] {
			result = append(result, k)
		}
	}
	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads config.toml from the target .legalqa/ directory.
// A missing file yields NewDefaultConfig(); fields set in the file override
// the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	d := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = d.Version
	}

	setIfEmpty(&cfg.Corpus.DataDir, d.Corpus.DataDir)
	setIfEmpty(&cfg.Corpus.Name, d.Corpus.Name)

	if cfg.Retrieval.CandidateFloor == 0 {
		cfg.Retrieval.CandidateFloor = d.Retrieval.CandidateFloor
	}
	if cfg.Retrieval.RelevantFloor == 0 {
		cfg.Retrieval.RelevantFloor = d.Retrieval.RelevantFloor
	}
	if cfg.Retrieval.SourceLimit == 0 {
		cfg.Retrieval.SourceLimit = d.Retrieval.SourceLimit
	}

	setIfEmpty(&cfg.Engine.Kind, d.Engine.Kind)

	setIfEmpty(&cfg.History.Provider, d.History.Provider)
	if cfg.History.PreviewChars == 0 {
		cfg.History.PreviewChars = d.History.PreviewChars
	}

	setIfEmpty(&cfg.API.Listen, d.API.Listen)
	setIfEmpty(&cfg.Client.APITarget, d.Client.APITarget)

	setIfEmpty(&cfg.VectorStore.Provider, d.VectorStore.Provider)
	setIfEmpty(&cfg.VectorStore.Collection, d.VectorStore.Collection)

	setIfEmpty(&cfg.Embedding.Provider, d.Embedding.Provider)
	setIfEmpty(&cfg.Embedding.Target, d.Embedding.Target)
	setIfEmpty(&cfg.Embedding.Model, d.Embedding.Model)
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = d.Embedding.Dimensions
	}

	setIfEmpty(&cfg.Events.Provider, d.Events.Provider)
	setIfEmpty(&cfg.Events.Topic, d.Events.Topic)
}

func setIfEmpty(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// SaveConfig persists the configuration to config.toml in the target .legalqa/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return &InvalidKeyError{Key: key}
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", &InvalidKeyError{Key: key}
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns a Config for the named preset.
// Supported presets: "local", "persistent", "semantic".
func PresetConfig(name string) (*Config, error) {
	cfg := NewDefaultConfig()

	switch strings.ToLower(name) {
	case "local":
		return cfg, nil

	case "persistent":
		cfg.History.Provider = HistorySQLite
		cfg.History.SQLitePath = "history.db"
		return cfg, nil

	case "semantic":
		cfg.Engine.Kind = EngineEmbedding
		cfg.History.Provider = HistorySQLite
		cfg.History.SQLitePath = "history.db"
		cfg.VectorStore.Provider = "sqlite"
		cfg.VectorStore.Target = "vectors.db"
		cfg.Embedding.Model = "nomic-embed-text"
		return cfg, nil

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"local", "persistent", "semantic"}
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
