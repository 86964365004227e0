package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent mentor configuration stored as config.toml
// in the .mentor/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Watch       WatchConfig       `toml:"watch"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Generation  GenerationConfig  `toml:"generation"`
	Memory      MemoryConfig      `toml:"memory"`
	Events      EventsConfig      `toml:"events"`
}

// WatchConfig holds settings for "mentor watch".
type WatchConfig struct {
	Dir        string   `toml:"dir,omitempty"`
	Extensions []string `toml:"extensions,omitempty"`
	Exclude    []string `toml:"exclude,omitempty"`

	// Interval is a Go duration string such as "5s".
	Interval string `toml:"interval,omitempty"`
	Mode     string `toml:"mode,omitempty"`
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

// GenerationConfig holds text generation settings.
type GenerationConfig struct {
	Provider    string  `toml:"provider,omitempty"`
	Target      string  `toml:"target,omitempty"`
	Model       string  `toml:"model,omitempty"`
	Temperature float64 `toml:"temperature,omitempty"`
	MaxTokens   uint    `toml:"max_tokens,omitempty"`
	Timeout     string  `toml:"timeout,omitempty"`
}

// MemoryConfig holds conversation memory settings.
type MemoryConfig struct {
	TopK uint `toml:"top_k,omitempty"`
}

// EventsConfig holds memory event stream settings.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma separated list of host:port pairs.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
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

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func durationKey(name string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			if d <= 0 {
				return fmt.Errorf("invalid value for %s: must be positive", name)
			}
			*field(c) = v
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"watch.dir": stringKey(func(c *Config) *string { return &c.Watch.Dir }),
	"watch.extensions": {
		get: func(c *Config) string { return strings.Join(c.Watch.Extensions, ",") },
		set: func(c *Config, v string) error {
			c.Watch.Extensions = SplitList(v)
			return nil
		},
	},
	"watch.exclude": {
		get: func(c *Config) string { return strings.Join(c.Watch.Exclude, ",") },
		set: func(c *Config, v string) error {
			c.Watch.Exclude = SplitList(v)
			return nil
		},
	},
	"watch.interval": durationKey("watch.interval", func(c *Config) *string { return &c.Watch.Interval }),
	"watch.mode": {
		get: func(c *Config) string { return c.Watch.Mode },
		set: func(c *Config, v string) error {
			if v != "poll" && v != "notify" {
				return fmt.Errorf("invalid value for watch.mode: %q (expected poll or notify)", v)
			}
			c.Watch.Mode = v
			return nil
		},
	},

	"vector_store.provider":   stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":     stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"vector_store.collection": stringKey(func(c *Config) *string { return &c.VectorStore.Collection }),

	"embedding.provider":   stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":     stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":      stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions }),

	"generation.provider": stringKey(func(c *Config) *string { return &c.Generation.Provider }),
	"generation.target":   stringKey(func(c *Config) *string { return &c.Generation.Target }),
	"generation.model":    stringKey(func(c *Config) *string { return &c.Generation.Model }),
	"generation.temperature": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Generation.Temperature, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for generation.temperature: %w", err)
			}
			c.Generation.Temperature = f
			return nil
		},
	},
	"generation.max_tokens": uintKey("generation.max_tokens", func(c *Config) *uint { return &c.Generation.MaxTokens }),
	"generation.timeout":    durationKey("generation.timeout", func(c *Config) *string { return &c.Generation.Timeout }),

	"memory.top_k": uintKey("memory.top_k", func(c *Config) *uint { return &c.Memory.TopK }),

	"events.provider": stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.brokers":  stringKey(func(c *Config) *string { return &c.Events.Brokers }),
	"events.topic":    stringKey(func(c *Config) *string { return &c.Events.Topic }),
}

// SplitList splits a comma separated value, trimming blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
