// Package secrets looks up the market data API key.
package secrets

import (
	"errors"
	"os"

	gokeyring "github.com/zalando/go-keyring"
)

const (
	// ServiceName is the keyring service the API key is filed under.
	ServiceName = "io.folio.cli"

	// KeyAPIKey is the keyring key for the market data API key.
	KeyAPIKey = "api_key"

	// EnvAPIKey overrides keyring lookups for headless environments.
	EnvAPIKey = "FOLIO_API_KEY"
)

// ErrNotFound is returned when a secret is not stored.
var ErrNotFound = errors.New("secret not found")

// Store is a secret store keyed by service and key.
type Store interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// SystemStore implements Store using the OS keyring.
type SystemStore struct{}

// NewSystemStore creates a new system keyring store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

// Get retrieves a secret from the OS keyring.
func (s *SystemStore) Get(service, key string) (string, error) {
	secret, err := gokeyring.Get(service, key)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return secret, nil
}

// Set stores a secret in the OS keyring.
func (s *SystemStore) Set(service, key, value string) error {
	return gokeyring.Set(service, key, value)
}

// Delete removes a secret; a missing secret is not an error.
func (s *SystemStore) Delete(service, key string) error {
	err := gokeyring.Delete(service, key)
	if err != nil && errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}
	return err
}

// EnvStore consults FOLIO_API_KEY before the wrapped store.
type EnvStore struct {
	underlying Store
}

// NewEnvStore wraps underlying.
func NewEnvStore(underlying Store) *EnvStore {
	return &EnvStore{underlying: underlying}
}

// Get returns the env override for the API key, else the stored value.
func (e *EnvStore) Get(service, key string) (string, error) {
	if key == KeyAPIKey {
		if v := os.Getenv(EnvAPIKey); v != "" {
			return v, nil
		}
	}
	return e.underlying.Get(service, key)
}

// Set stores a secret in the underlying store.
func (e *EnvStore) Set(service, key, value string) error {
	return e.underlying.Set(service, key, value)
}

// Delete removes a secret from the underlying store.
func (e *EnvStore) Delete(service, key string) error {
	return e.underlying.Delete(service, key)
}

// APIKey resolves the API key from store, falling back to configured.
// Keyring failures other than not-found are returned alongside the
// fallback so callers can log them; an empty key is not an error.
func APIKey(store Store, configured string) (string, error) {
	key, err := store.Get(ServiceName, KeyAPIKey)
	switch {
	case err == nil && key != "":
		return key, nil
	case err == nil, errors.Is(err, ErrNotFound):
		return configured, nil
	default:
		return configured, err
	}
}
