package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/schema"
)

// snapshotTable is the name of the table for dashboard snapshots.
const snapshotTable = "ciweather_snapshots"

// SnapshotKey returns the cache key under which the dashboard written to
// outputFile is stored.
func SnapshotKey(outputFile string) string {
	if abs, err := filepath.Abs(outputFile); err == nil {
		outputFile = abs
	}
	return "snapshot:" + filepath.Clean(outputFile)
}

// LoadSnapshot returns the dashboard stored under key. A missing entry, a
// disabled store or a snapshot written by another layout version yields
// (nil, nil).
func LoadSnapshot(store contract.CacheStore, key string) (*schema.Dashboard, error) {
	if store == nil {
		return nil, nil
	}
	data, version, _, err := store.Get(key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if version != schema.SnapshotVersion {
		return nil, nil
	}
	var dash schema.Dashboard
	if err := json.Unmarshal(data, &dash); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &dash, nil
}

// StoreSnapshot saves the dashboard under key.
func StoreSnapshot(store contract.CacheStore, key string, dash *schema.Dashboard, now time.Time) error {
	if store == nil || dash == nil {
		return nil
	}
	data, err := json.Marshal(dash)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return store.Set(key, data, schema.SnapshotVersion, now.Unix())
}
