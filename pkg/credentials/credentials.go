// Package credentials stores generation provider API keys in
// credentials.toml inside the .mentor/ directory.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/mentor/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// providerEnvVars maps provider names to their expected environment variables.
var providerEnvVars = map[string]string{
	"cohere":    "COHERE_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// Manager reads and writes credentials.toml.
type Manager struct {
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .mentor/ directory; otherwise the standard dotdir resolution applies.
func NewManager(override string) (*Manager, error) {
	target, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}

	return &Manager{
		targetPath: filepath.Join(target, credentialsFile),
	}, nil
}

// Load reads credentials.toml. A missing file yields empty credentials.
func (m *Manager) Load() (*Credentials, error) {
	creds := &Credentials{Version: currentVersion}

	_, err := toml.DecodeFile(m.targetPath, creds)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	if creds.Providers == nil {
		creds.Providers = make(map[string]ProviderCredential)
	}
	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// update loads the file, applies fn and saves the result.
func (m *Manager) update(fn func(map[string]ProviderCredential)) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}
	fn(creds.Providers)
	return m.Save(creds)
}

// SetKey stores an API key for the given provider.
func (m *Manager) SetKey(provider, key string) error {
	return m.update(func(p map[string]ProviderCredential) {
		p[provider] = ProviderCredential{APIKey: key, StoredAt: time.Now().UTC()}
	})
}

// GetKey returns the stored API key for the given provider, or "" if none.
func (m *Manager) GetKey(provider string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	return creds.Providers[provider].APIKey, nil
}

// ResolveKey returns the key for provider from credentials.toml, falling
// back to the provider's environment variable.
func (m *Manager) ResolveKey(provider string) string {
	key, _ := m.Lookup(provider)
	return key
}

// Lookup resolves the key for provider and reports its source.
func (m *Manager) Lookup(provider string) (string, KeySource) {
	if m != nil {
		if key, err := m.GetKey(provider); err == nil && key != "" {
			return key, SourceStored
		}
	}

	if env := EnvVarForProvider(provider); env != "" {
		if key := os.Getenv(env); key != "" {
			return key, SourceEnv
		}
	}

	return "", SourceNone
}

// RemoveKey deletes the stored credential for a provider.
func (m *Manager) RemoveKey(provider string) error {
	return m.update(func(p map[string]ProviderCredential) {
		delete(p, provider)
	})
}

// ListProviders returns the sorted names of providers with stored credentials.
func (m *Manager) ListProviders() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(creds.Providers)), nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// EnvVarForProvider returns the environment variable name for a given provider.
// Returns an empty string for unknown providers.
func EnvVarForProvider(provider string) string {
	return providerEnvVars[provider]
}

// SupportedProviders returns the providers that take an API key.
func SupportedProviders() []string {
	return []string{"cohere", "openai", "anthropic"}
}

// IsSupportedProvider returns true if the given provider is supported.
func IsSupportedProvider(provider string) bool {
	return slices.Contains(SupportedProviders(), provider)
}
