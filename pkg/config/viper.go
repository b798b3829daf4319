package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/legalqa/pkg/dotdir"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. LEGALQA_CORPUS_DATA_DIR.
const EnvPrefix = "LEGALQA"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the LEGALQA_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (LEGALQA_API_LISTEN, LEGALQA_ENGINE_KIND, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Corpus: CorpusConfig{
			DataDir: v.GetString("corpus.data_dir"),
			Name:    v.GetString("corpus.name"),
		},
		Retrieval: RetrievalConfig{
			CandidateFloor: v.GetFloat64("retrieval.candidate_floor"),
			RelevantFloor:  v.GetFloat64("retrieval.relevant_floor"),
			SourceLimit:    v.GetInt("retrieval.source_limit"),
		},
		Engine: EngineConfig{
			Kind: v.GetString("engine.kind"),
		},
		History: HistoryConfig{
			Provider:     v.GetString("history.provider"),
			SQLitePath:   v.GetString("history.sqlite_path"),
			PostgresDSN:  v.GetString("history.postgres_dsn"),
			PreviewChars: v.GetInt("history.preview_chars"),
			Disabled:     v.GetBool("history.disabled"),
		},
		API: APIConfig{
			Listen:      v.GetString("api.listen"),
			StaticDir:   v.GetString("api.static_dir"),
			MCPDisabled: v.GetBool("api.mcp_disabled"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		VectorStore: VectorStoreConfig{
			Provider:   v.GetString("vector_store.provider"),
			Target:     v.GetString("vector_store.target"),
			Collection: v.GetString("vector_store.collection"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetString("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("corpus.data_dir", d.Corpus.DataDir)
	v.SetDefault("corpus.name", d.Corpus.Name)

	v.SetDefault("retrieval.candidate_floor", d.Retrieval.CandidateFloor)
	v.SetDefault("retrieval.relevant_floor", d.Retrieval.RelevantFloor)
	v.SetDefault("retrieval.source_limit", d.Retrieval.SourceLimit)

	v.SetDefault("engine.kind", d.Engine.Kind)

	v.SetDefault("history.provider", d.History.Provider)
	v.SetDefault("history.sqlite_path", d.History.SQLitePath)
	v.SetDefault("history.postgres_dsn", d.History.PostgresDSN)
	v.SetDefault("history.preview_chars", d.History.PreviewChars)
	v.SetDefault("history.disabled", d.History.Disabled)

	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.static_dir", d.API.StaticDir)
	v.SetDefault("api.mcp_disabled", d.API.MCPDisabled)

	v.SetDefault("client.api_target", d.Client.APITarget)

	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}
