// Package iocache provides durable storage for scan results and run history.
package iocache

import (
	"sync"

	"polyscan/internal/contract"
)

// CacheStoreManager manages the scan cache and run history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	scan         contract.ScanStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetScanStore returns the scan cache store.
func (mgr *CacheStoreManager) GetScanStore() contract.ScanStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.scan
}

// GetRunStore returns the run history store.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
