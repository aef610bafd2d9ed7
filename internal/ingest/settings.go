package ingest

import (
	"context"

	"github.com/Tiliavir/clicktime-assistant/internal/storage"
)

// Settings is the process-wide ingestion switch. It is off until the user
// starts a run.
type Settings struct {
	store storage.Store
}

// NewSettings returns Settings backed by s.
func NewSettings(s storage.Store) *Settings {
	return &Settings{store: s}
}

// Enabled reports whether events are currently accepted.
func (s *Settings) Enabled(ctx context.Context) (bool, error) {
	return storage.GetBool(ctx, s.store, storage.KeyEnabled, false)
}

// SetEnabled turns ingestion on or off.
func (s *Settings) SetEnabled(ctx context.Context, enabled bool) error {
	return storage.SetJSON(ctx, s.store, storage.KeyEnabled, enabled)
}
