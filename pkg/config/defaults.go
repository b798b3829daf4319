package config

// Engine kinds.
const (
	EngineLexical   = "lexical"
	EngineEmbedding = "embedding"
)

// History providers.
const (
	HistoryMemory   = "memory"
	HistorySQLite   = "sqlite"
	HistoryPostgres = "postgres"
)

const (
	defaultDataDir    = "data"
	defaultCorpusName = "Code du travail"

	defaultCandidateFloor = 0.1
	defaultRelevantFloor  = 0.15
	defaultSourceLimit    = 5

	defaultPreviewChars = 500

	defaultAPIListen       = ":8001"
	defaultClientAPITarget = "http://localhost:8001"

	defaultVectorProvider   = "sqlite"
	defaultVectorCollection = "legalqa_articles"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768
	defaultEmbeddingTarget     = "http://localhost:11434"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "legalqa.exchanges"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Corpus: CorpusConfig{
			DataDir: defaultDataDir,
			Name:    defaultCorpusName,
		},
		Retrieval: RetrievalConfig{
			CandidateFloor: defaultCandidateFloor,
			RelevantFloor:  defaultRelevantFloor,
			SourceLimit:    defaultSourceLimit,
		},
		Engine: EngineConfig{
			Kind: EngineLexical,
		},
		History: HistoryConfig{
			Provider:     HistoryMemory,
			PreviewChars: defaultPreviewChars,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultVectorCollection,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
