package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent legalqa configuration stored as config.toml
// in the .legalqa/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Corpus      CorpusConfig      `toml:"corpus"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Engine      EngineConfig      `toml:"engine"`
	History     HistoryConfig     `toml:"history"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Events      EventsConfig      `toml:"events"`
}

// CorpusConfig points at the law text corpus. DataDir must contain a texts/
// subdirectory of .txt files.
type CorpusConfig struct {
	DataDir string `toml:"data_dir,omitempty"`
	Name    string `toml:"name,omitempty"`
}

// RetrievalConfig holds the two score floors and the number of sources
// surfaced next to an answer.
type RetrievalConfig struct {
	CandidateFloor float64 `toml:"candidate_floor,omitempty"`
	RelevantFloor  float64 `toml:"relevant_floor,omitempty"`
	SourceLimit    int     `toml:"source_limit,omitempty"`
}

// EngineConfig selects the retrieval engine: "lexical" or "embedding".
type EngineConfig struct {
	Kind string `toml:"kind,omitempty"`
}

// HistoryConfig holds question/answer history settings.
type HistoryConfig struct {
	Provider     string `toml:"provider,omitempty"`
	SQLitePath   string `toml:"sqlite_path,omitempty"`
	PostgresDSN  string `toml:"postgres_dsn,omitempty"`
	PreviewChars int    `toml:"preview_chars,omitempty"`
	Disabled     bool   `toml:"disabled,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen      string `toml:"listen,omitempty"`
	StaticDir   string `toml:"static_dir,omitempty"`
	MCPDisabled bool   `toml:"mcp_disabled,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running API
// server (legalqa ask, legalqa search, legalqa chat). Values are full URLs.
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// EventsConfig holds exchange event publishing settings. Brokers is a comma
// separated list of host:port pairs.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			if n <= 0 {
				return fmt.Errorf("invalid value for %s: must be positive", name)
			}
			*field(c) = n
			return nil
		},
	}
}

func floorKey(name string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatFloat(*field(c), 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			if f <= 0 || f >= 1 {
				return fmt.Errorf("invalid value for %s: must be in (0, 1)", name)
			}
			*field(c) = f
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"corpus.data_dir": stringKey(func(c *Config) *string { return &c.Corpus.DataDir }),
	"corpus.name":     stringKey(func(c *Config) *string { return &c.Corpus.Name }),

	"retrieval.candidate_floor": floorKey("retrieval.candidate_floor", func(c *Config) *float64 { return &c.Retrieval.CandidateFloor }),
	"retrieval.relevant_floor":  floorKey("retrieval.relevant_floor", func(c *Config) *float64 { return &c.Retrieval.RelevantFloor }),
	"retrieval.source_limit":    intKey("retrieval.source_limit", func(c *Config) *int { return &c.Retrieval.SourceLimit }),

	"engine.kind": {
		get: func(c *Config) string { return c.Engine.Kind },
		set: func(c *Config, v string) error {
			switch v {
			case EngineLexical, EngineEmbedding:
				c.Engine.Kind = v
				return nil
			default:
				return fmt.Errorf("invalid value for engine.kind: %q (available: %s, %s)", v, EngineLexical, EngineEmbedding)
			}
		},
	},

	"history.provider": {
		get: func(c *Config) string { return c.History.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case HistoryMemory, HistorySQLite, HistoryPostgres:
				c.History.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for history.provider: %q (available: %s, %s, %s)", v, HistoryMemory, HistorySQLite, HistoryPostgres)
			}
		},
	},
	"history.sqlite_path":   stringKey(func(c *Config) *string { return &c.History.SQLitePath }),
	"history.postgres_dsn":  stringKey(func(c *Config) *string { return &c.History.PostgresDSN }),
	"history.preview_chars": intKey("history.preview_chars", func(c *Config) *int { return &c.History.PreviewChars }),
	"history.disabled":      boolKey("history.disabled", func(c *Config) *bool { return &c.History.Disabled }),

	"api.listen":       stringKey(func(c *Config) *string { return &c.API.Listen }),
	"api.static_dir":   stringKey(func(c *Config) *string { return &c.API.StaticDir }),
	"api.mcp_disabled": boolKey("api.mcp_disabled", func(c *Config) *bool { return &c.API.MCPDisabled }),

	"client.api_target": stringKey(func(c *Config) *string { return &c.Client.APITarget }),

	"vector_store.provider":   stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":     stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"vector_store.collection": stringKey(func(c *Config) *string { return &c.VectorStore.Collection }),

	"embedding.provider": stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":   stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":    stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},

	"events.provider": stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.brokers":  stringKey(func(c *Config) *string { return &c.Events.Brokers }),
	"events.topic":    stringKey(func(c *Config) *string { return &c.Events.Topic }),
}
