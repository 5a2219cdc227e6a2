package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"polyscan/internal/contract"
	"polyscan/schema"
)

// currentCacheVersion defines the version of the cache schema. Bump it when
// the rule tables or LanguageInfo shape change so stale entries miss.
const currentCacheVersion = 2

// CachedDetectLanguages wraps DetectLanguages with the scan cache. The cache
// key fingerprints the tree's manifest set, so edits to any recognized config
// file invalidate the entry. With no store configured (or --no-cache) it
// falls through to a direct scan.
func CachedDetectLanguages(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.LanguageInfo, error) {
	store := mgr.GetScanStore()
	if store == nil || cfg.NoCache {
		return DetectLanguages(ctx, cfg.Root)
	}

	key := generateCacheKey(cfg.Root)

	if result, ok := checkCacheHit(store, key, cfg.CacheTTL); ok {
		return result, nil
	}

	infos, err := DetectLanguages(ctx, cfg.Root)
	if err != nil {
		return nil, err
	}
	report := schema.ScanReport{Root: cfg.Root, Languages: infos, ScannedAt: time.Now()}
	if data, err := json.Marshal(report); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	return infos, nil
}

// checkCacheHit attempts to retrieve and validate a cached scan report.
// ok is false on a miss, a stale or version-mismatched entry, or an
// undecodable payload.
func checkCacheHit(store contract.ScanStore, key string, ttl time.Duration) ([]schema.LanguageInfo, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil, false // Cache miss
	}
	if version != currentCacheVersion {
		return nil, false
	}
	if time.Since(time.Unix(ts, 0)) > ttl {
		return nil, false
	}
	var report schema.ScanReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false
	}
	return report.Languages, true
}

// generateCacheKey creates a key from the root path plus a fingerprint of
// every recognized config file's path, size and mtime. Source file edits do
// not invalidate the cache; manifest changes and file add/removals do,
// because the manifest set is what drives builds and dependency output.
func generateCacheKey(root string) string {
	h := sha256.New()
	fmt.Fprintf(h, "root=%s;v=%d;", root, currentCacheVersion)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root {
				if _, skip := skipDirNames[d.Name()]; skip {
					return filepath.SkipDir
				}
			}
			return nil
		}
		base := d.Name()
		if _, ok := configFileNames[base]; !ok {
			return nil
		}
		info, err := os.Lstat(path)
		if err != nil {
			return nil
		}
		fmt.Fprintf(h, "%s|%d|%d;", contract.NormalizeRelPath(root, path), info.Size(), info.ModTime().UnixNano())
		return nil
	})

	return fmt.Sprintf("scan-%x", h.Sum(nil))
}
