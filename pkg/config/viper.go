package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/mentor/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the MENTOR_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MENTOR_WATCH_DIR, MENTOR_GENERATION_PROVIDER, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
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

	// 3. Environment variables: MENTOR_WATCH_DIR, MENTOR_EVENTS_BROKERS, etc.
	v.SetEnvPrefix("MENTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Watch
	v.SetDefault("watch.dir", d.Watch.Dir)
	v.SetDefault("watch.extensions", strings.Join(d.Watch.Extensions, ","))
	v.SetDefault("watch.exclude", strings.Join(d.Watch.Exclude, ","))
	v.SetDefault("watch.interval", d.Watch.Interval)
	v.SetDefault("watch.mode", d.Watch.Mode)

	// Vector store
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	// Generation
	v.SetDefault("generation.provider", d.Generation.Provider)
	v.SetDefault("generation.target", d.Generation.Target)
	v.SetDefault("generation.model", d.Generation.Model)
	v.SetDefault("generation.temperature", d.Generation.Temperature)
	v.SetDefault("generation.max_tokens", d.Generation.MaxTokens)
	v.SetDefault("generation.timeout", d.Generation.Timeout)

	// Memory
	v.SetDefault("memory.top_k", d.Memory.TopK)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}

// Settings is the fully resolved runtime configuration, after flags,
// environment and config.toml have been merged.
type Settings struct {
	Watch       WatchSettings
	VectorStore VectorStoreConfig
	Embedding   EmbeddingConfig
	Generation  GenerationSettings
	TopK        int
	Events      EventsConfig
}

// WatchSettings is WatchConfig with parsed values.
type WatchSettings struct {
	Dir        string
	Extensions []string
	Exclude    []string
	Interval   time.Duration
	Mode       string
}

// GenerationSettings is GenerationConfig with parsed values.
type GenerationSettings struct {
	Provider    string
	Target      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Resolve reads every key from v into Settings.
func Resolve(v *viper.Viper) (*Settings, error) {
	interval, err := parseDuration(v, "watch.interval")
	if err != nil {
		return nil, err
	}

	timeout, err := parseDuration(v, "generation.timeout")
	if err != nil {
		return nil, err
	}

	return &Settings{
		Watch: WatchSettings{
			Dir:        v.GetString("watch.dir"),
			Extensions: stringList(v, "watch.extensions"),
			Exclude:    stringList(v, "watch.exclude"),
			Interval:   interval,
			Mode:       v.GetString("watch.mode"),
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
		Generation: GenerationSettings{
			Provider:    v.GetString("generation.provider"),
			Target:      v.GetString("generation.target"),
			Model:       v.GetString("generation.model"),
			Temperature: v.GetFloat64("generation.temperature"),
			MaxTokens:   v.GetInt("generation.max_tokens"),
			Timeout:     timeout,
		},
		TopK: v.GetInt("memory.top_k"),
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetString("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
	}, nil
}

// parseDuration accepts both duration strings and bound duration flags.
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return d, nil
}

// listKeys hold string lists.
var listKeys = map[string]bool{"watch.extensions": true, "watch.exclude": true}

// stringList accepts a TOML array, a comma separated string or a bound flag.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		out = append(out, SplitList(item)...)
	}
	return out
}

// LoadSettings resolves settings for cmd. The config dir comes from the
// persistent --config-dir flag and the listed registry flags override file
// and environment values when set.
func LoadSettings(cmd *cobra.Command, registryKeys []string) (*Settings, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := InitViper(configDir)
	if err != nil {
		return nil, err
	}
	BindRegisteredFlags(v, cmd, Flags, registryKeys)

	return Resolve(v)
}

// EffectiveValues resolves every config key through defaults, the config
// file and MENTOR_* environment variables, in ValidConfigKeys order.
func EffectiveValues(configDir string) (map[string]string, error) {
	v, err := InitViper(configDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(configKeys))
	for _, key := range ValidConfigKeys() {
		if listKeys[key] {
			out[key] = strings.Join(stringList(v, key), ",")
			continue
		}
		out[key] = v.GetString(key)
	}
	return out, nil
}
