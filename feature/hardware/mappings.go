package hardware

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"golang.org/x/sync/singleflight"

	"listing-reconciler/core/reconcile"
)

// mappingsFile is the on-disk shape of a key mappings file.
type mappingsFile struct {
	Mappings []reconcile.KeyMapping `yaml:"mappings"`
}

// LoadKeyMappings reads user key mappings from a YAML file. Section names are
// normalized to lower case; mappings with a missing side are dropped.
func LoadKeyMappings(path string) ([]reconcile.KeyMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key mappings: %w", err)
	}

	var file mappingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse key mappings: %w", err)
	}

	mappings := make([]reconcile.KeyMapping, 0, len(file.Mappings))
	for _, m := range file.Mappings {
		m.Section1 = strings.ToLower(strings.TrimSpace(m.Section1))
		m.Section2 = strings.ToLower(strings.TrimSpace(m.Section2))
		if m.Section1 == "" || m.Section2 == "" || m.Key1 == "" || m.Key2 == "" {
			continue
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

// mappingEntry is one cached mappings file.
type mappingEntry struct {
	mappings []reconcile.KeyMapping
	built    time.Time
	ttl      time.Duration
}

// isExpired returns true if this entry has expired based on its TTL.
func (e *mappingEntry) isExpired() bool {
	if e.ttl == 0 {
		return true // No caching
	}
	return time.Since(e.built) > e.ttl
}

// mappingStore holds cached key mappings keyed by file path.
type mappingStore struct {
	mu      sync.RWMutex
	entries map[string]*mappingEntry
	sf      singleflight.Group
}

// globalMappingStore is the singleton store for all mapping loads.
var globalMappingStore = &mappingStore{
	entries: make(map[string]*mappingEntry),
}

// CachedKeyMappings returns the key mappings for path, reloading from disk
// when the cached copy has expired. Uses singleflight to prevent stampedes
// when many reconciliation passes start at once.
func CachedKeyMappings(path string, ttl time.Duration) ([]reconcile.KeyMapping, error) {
	// Fast path: entry exists and is fresh.
	globalMappingStore.mu.RLock()
	entry, exists := globalMappingStore.entries[path]
	globalMappingStore.mu.RUnlock()

	if exists && !entry.isExpired() {
		return entry.mappings, nil
	}

	result, err, _ := globalMappingStore.sf.Do(path, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock.
		globalMappingStore.mu.RLock()
		entry, exists := globalMappingStore.entries[path]
		globalMappingStore.mu.RUnlock()

		if exists && !entry.isExpired() {
			return entry.mappings, nil
		}

		mappings, err := LoadKeyMappings(path)
		if err != nil {
			return nil, err
		}

		globalMappingStore.mu.Lock()
		globalMappingStore.entries[path] = &mappingEntry{
			mappings: mappings,
			built:    time.Now(),
			ttl:      ttl,
		}
		globalMappingStore.mu.Unlock()

		return mappings, nil
	})

	if err != nil {
		return nil, err
	}
	return result.([]reconcile.KeyMapping), nil
}

// InvalidateKeyMappings removes the cached mappings for path. Useful for
// testing or forcing a reload.
func InvalidateKeyMappings(path string) {
	globalMappingStore.mu.Lock()
	delete(globalMappingStore.entries, path)
	globalMappingStore.mu.Unlock()
}
