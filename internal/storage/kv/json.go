package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/newthinker/folio/internal/core"
)

// Logical keys of the persisted application state.
const (
	KeyPortfolio = "portfolio"
	KeyBalance   = "balance"
	KeyFavorites = "favorites"
)

// ErrCorrupt marks a stored blob that could not be decoded.
var ErrCorrupt = errors.New("kv: corrupt value")

// LoadJSON decodes the value under key into v. It reports false when the
// key is absent. A value that does not decode yields ErrCorrupt so callers
// can fall back to defaults.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Read(ctx, key)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.Write(ctx, key, data); err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("writing %s: %w", key, err))
	}
	return nil
}
