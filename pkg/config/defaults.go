package config

const (
	defaultWatchInterval = "5s"
	defaultWatchMode     = "poll"

	defaultVectorProvider   = "chromem"
	defaultVectorCollection = "chat_history"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768

	// generation.model has no default: each generator falls back to its
	// own DefaultModel, so switching providers never carries a stale name.
	defaultGenerationProvider  = "cohere"
	defaultGenerationMaxTokens = 300
	defaultGenerationTimeout   = "60s"

	defaultMemoryTopK = 2

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "mentor.memory"
)

var defaultWatchExtensions = []string{".py"}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Watch: WatchConfig{
			Extensions: append([]string(nil), defaultWatchExtensions...),
			Interval:   defaultWatchInterval,
			Mode:       defaultWatchMode,
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
		Generation: GenerationConfig{
			Provider:  defaultGenerationProvider,
			MaxTokens: defaultGenerationMaxTokens,
			Timeout:   defaultGenerationTimeout,
		},
		Memory: MemoryConfig{
			TopK: defaultMemoryTopK,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
