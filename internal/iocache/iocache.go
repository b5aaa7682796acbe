// Package iocache persists dashboard snapshots and run history.
package iocache

import (
	"sync"

	"github.com/huangsam/ciweather/internal/contract"
)

// StoreManager holds the snapshot cache and the run history stores.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	snapshot     contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &StoreManager{} // Compile-time check

// NewStoreManager wraps already opened stores. Either may be nil.
func NewStoreManager(snapshot contract.CacheStore, history contract.HistoryStore) *StoreManager {
	return &StoreManager{snapshot: snapshot, history: history}
}

// GetSnapshotStore returns the snapshot CacheStore.
func (mgr *StoreManager) GetSnapshotStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshot
}

// GetHistoryStore returns the run HistoryStore.
func (mgr *StoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
