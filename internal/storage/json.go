package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// GetJSON decodes the value for key into v. found is false when the key is
// absent or holds JSON null, matching the extension's "== null" checks.
func GetJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if string(data) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// GetString returns the string stored under key.
func GetString(ctx context.Context, s Store, key string) (string, bool, error) {
	var v string
	found, err := GetJSON(ctx, s, key, &v)
	return v, found, err
}

// GetBool returns the bool stored under key, or def when it is absent.
func GetBool(ctx context.Context, s Store, key string, def bool) (bool, error) {
	var v bool
	found, err := GetJSON(ctx, s, key, &v)
	if err != nil || !found {
		return def, err
	}
	return v, nil
}
