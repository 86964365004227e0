package config

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --provider
// on "mentor watch", "mentor analyze" and "mentor chat").
type Flag struct {
	// Name is the long flag name (e.g. "dir").
	Name string

	// Shorthand is the one-letter short flag (e.g. "D"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "watch.dir").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// AddDurationFlag and BindRegisteredFlags to avoid typos or drift from one
// command to another.
const (
	FlagWatchDir        = "dir"
	FlagWatchExtensions = "ext"
	FlagWatchExclude    = "exclude"
	FlagWatchInterval   = "interval"
	FlagWatchMode       = "mode"
	FlagVectorStoreProv = "vector-store-provider"
	FlagVectorStoreTgt  = "vector-store-target"
	FlagEmbeddingProv   = "embedding-provider"
	FlagEmbeddingTgt    = "embedding-target"
	FlagEmbeddingModel  = "embedding-model"
	FlagEmbeddingDims   = "embedding-dimensions"
	FlagGenerationProv  = "provider"
	FlagGenerationTgt   = "provider-target"
	FlagGenerationModel = "model"
	FlagTopK            = "top-k"
	FlagEventsProvider  = "events-provider"
	FlagEventsBrokers   = "events-brokers"
)

// Flags is the registry shared by every mentor command.
var Flags = FlagSet{
	FlagWatchDir:        {Name: "dir", Shorthand: "D", ViperKey: "watch.dir", Description: "Directory to watch for source changes"},
	FlagWatchExtensions: {Name: "ext", ViperKey: "watch.extensions", Description: "Comma separated file extensions to watch"},
	FlagWatchExclude:    {Name: "exclude", ViperKey: "watch.exclude", Description: "Comma separated file name globs to skip"},
	FlagWatchInterval:   {Name: "interval", ViperKey: "watch.interval", Description: "Time between directory polls"},
	FlagWatchMode:       {Name: "mode", ViperKey: "watch.mode", Description: "Change detection mode (poll or notify)"},
	FlagVectorStoreProv: {Name: "vector-store-provider", ViperKey: "vector_store.provider", Description: "Vector store provider (chromem, sqlite or chroma)"},
	FlagVectorStoreTgt:  {Name: "vector-store-target", ViperKey: "vector_store.target", Description: "Vector store location (directory, database file or URL)"},
	FlagEmbeddingProv:   {Name: "embedding-provider", ViperKey: "embedding.provider", Description: "Embedding provider (ollama, openai or hash)"},
	FlagEmbeddingTgt:    {Name: "embedding-target", ViperKey: "embedding.target", Description: "Embedding provider URL"},
	FlagEmbeddingModel:  {Name: "embedding-model", ViperKey: "embedding.model", Description: "Embedding model name"},
	FlagEmbeddingDims:   {Name: "embedding-dimensions", ViperKey: "embedding.dimensions", Description: "Embedding dimensionality"},
	FlagGenerationProv:  {Name: "provider", Shorthand: "p", ViperKey: "generation.provider", Description: "Generation provider (cohere, openai, anthropic or ollama)"},
	FlagGenerationTgt:   {Name: "provider-target", ViperKey: "generation.target", Description: "Generation provider base URL"},
	FlagGenerationModel: {Name: "model", Shorthand: "m", ViperKey: "generation.model", Description: "Generation model name"},
	FlagTopK:            {Name: "top-k", Shorthand: "k", ViperKey: "memory.top_k", Description: "Number of related turns recalled per question"},
	FlagEventsProvider:  {Name: "events-provider", ViperKey: "events.provider", Description: "Memory event stream provider (nop or kafka)"},
	FlagEventsBrokers:   {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma separated Kafka brokers"},
}

// StoreFlagKeys are registered by every command that opens the memory store.
var StoreFlagKeys = []string{
	FlagVectorStoreProv,
	FlagVectorStoreTgt,
	FlagEmbeddingProv,
	FlagEmbeddingTgt,
	FlagEmbeddingModel,
	FlagEmbeddingDims,
	FlagEventsProvider,
	FlagEventsBrokers,
}

// GenerationFlagKeys are registered by every command that talks to a model.
var GenerationFlagKeys = []string{
	FlagGenerationProv,
	FlagGenerationTgt,
	FlagGenerationModel,
	FlagTopK,
}

// WatchFlagKeys configure the directory watcher.
var WatchFlagKeys = []string{
	FlagWatchDir,
	FlagWatchExtensions,
	FlagWatchExclude,
	FlagWatchInterval,
	FlagWatchMode,
}

// AddRegisteredFlags registers each key with its value type. The flag
// values are read back through viper after BindRegisteredFlags, so the
// targets are not kept.
func AddRegisteredFlags(cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, key := range registryKeys {
		switch key {
		case FlagEmbeddingDims, FlagTopK:
			AddUintFlag(cmd, fs, key, new(uint))
		case FlagWatchInterval:
			AddDurationFlag(cmd, fs, key, new(time.Duration))
		default:
			AddStringFlag(cmd, fs, key, new(string))
		}
	}
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddDurationFlag registers a duration flag on cmd from the given FlagSet.
func AddDurationFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *time.Duration) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultDuration(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().DurationVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().DurationVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultViper() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	return defaultViper().GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	return defaultViper().GetUint(viperKey)
}

func defaultDuration(viperKey string) time.Duration {
	return defaultViper().GetDuration(viperKey)
}
