package credentials

import "time"

// Credentials is the on-disk shape of credentials.toml.
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential is one generation provider's key.
type ProviderCredential struct {
	APIKey   string    `toml:"api_key"`
	StoredAt time.Time `toml:"stored_at,omitempty"`
}

// KeySource says where a resolved key came from.
type KeySource int

const (
	SourceNone KeySource = iota
	SourceStored
	SourceEnv
)

func (s KeySource) String() string {
	switch s {
	case SourceStored:
		return "stored"
	case SourceEnv:
		return "env"
	default:
		return "missing"
	}
}

// Mask hides all but the last four characters of key.
func Mask(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
