// internal/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"tenderec/internal/common/logger"
	"tenderec/internal/common/storage"
)

// Envelope is the persisted form of a store: its records under a named field,
// tagged with the schema version that wrote them.
type Envelope[V any] struct {
	Version int                     `json:"version"`
	State   map[string]map[string]V `json:"state"`
}

// Migration upgrades a payload written under an older version. raw is the
// "state" object exactly as stored.
type Migration[V any] func(fromVersion int, raw json.RawMessage) (map[string]V, error)

// LoadResult says what Load did with a payload.
type LoadResult string

const (
	LoadedEmpty     LoadResult = "empty"
	LoadedCurrent   LoadResult = "current"
	LoadedMigrated  LoadResult = "migrated"
	ResetOnVersion  LoadResult = "reset_version"
	ResetOnCorrupt  LoadResult = "reset_corrupt"
	ResetOnMigrated LoadResult = "reset_migration_failed"
)

// Load decodes a persisted payload into records. It never fails: missing or
// corrupt data, or data of another version with no migration, yields an empty map.
func Load[V any](data []byte, field string, version int, migrate Migration[V]) (map[string]V, LoadResult) {
	if len(data) == 0 {
		return map[string]V{}, LoadedEmpty
	}

	var head struct {
		Version *int                       `json:"version"`
		State   map[string]json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &head); err != nil || head.Version == nil {
		return map[string]V{}, ResetOnCorrupt
	}

	raw := head.State[field]
	if *head.Version != version {
		if migrate == nil {
			return map[string]V{}, ResetOnVersion
		}
		records, err := migrate(*head.Version, json.RawMessage(raw))
		if err != nil || records == nil {
			return map[string]V{}, ResetOnMigrated
		}
		return records, LoadedMigrated
	}

	records := map[string]V{}
	if len(raw) == 0 || string(raw) == "null" {
		return records, LoadedCurrent
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return map[string]V{}, ResetOnCorrupt
	}
	return records, LoadedCurrent
}

// Encode renders records as an envelope payload.
func Encode[V any](records map[string]V, field string, version int) ([]byte, error) {
	return json.Marshal(Envelope[V]{
		Version: version,
		State:   map[string]map[string]V{field: records},
	})
}

// Options configure one persisted store.
type Options[V any] struct {
	Key       string // storage key
	Field     string // name of the records object inside "state"
	Version   int
	Migration Migration[V]
}

// Store is a persisted map with at most one record per key. Every mutation
// rewrites the whole map to the backend.
type Store[V any] struct {
	mu      sync.RWMutex
	records map[string]V
	backend storage.Backend
	opts    Options[V]
	logger  logger.Logger
	now     func() time.Time

	subMu  sync.Mutex
	subs   map[int]func(map[string]V)
	nextID int
}

// Open rehydrates a store from the backend. Only a backend read error is
// returned; unusable payloads become an empty store.
func Open[V any](ctx context.Context, backend storage.Backend, opts Options[V], log logger.Logger) (*Store[V], error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Store[V]{
		backend: backend,
		opts:    opts,
		logger:  log.Named("store").WithFields(map[string]interface{}{"store": opts.Key}),
		now:     time.Now,
		subs:    make(map[int]func(map[string]V)),
	}

	data, err := backend.Load(ctx, opts.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", opts.Key, err)
	}
	records, result := Load(data, opts.Field, opts.Version, opts.Migration)
	switch result {
	case ResetOnVersion, ResetOnCorrupt, ResetOnMigrated:
		s.logger.Warn("Discarded persisted state", map[string]interface{}{
			"reason":  string(result),
			"version": opts.Version,
		})
	default:
		s.logger.Debug("Loaded persisted state", map[string]interface{}{
			"result":  string(result),
			"records": len(records),
		})
	}
	s.records = records
	return s, nil
}

// WithClock replaces the time source used for record timestamps.
func (s *Store[V]) WithClock(now func() time.Time) *Store[V] {
	s.now = now
	return s
}

// NowMillis is the current time in unix milliseconds by the store's clock.
func (s *Store[V]) NowMillis() int64 {
	return s.now().UnixMilli()
}

func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	return v, ok
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns a copy of every record.
func (s *Store[V]) Snapshot() map[string]V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store[V]) copyLocked() map[string]V {
	out := make(map[string]V, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// Values returns every record ordered by key.
func (s *Store[V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.records[k])
	}
	return out
}

// Set replaces the record for key. The in-memory state changes even when
// persisting fails; the error is returned so callers can report it.
func (s *Store[V]) Set(ctx context.Context, key string, v V) error {
	return s.mutate(ctx, func(records map[string]V) {
		records[key] = v
	})
}

func (s *Store[V]) Delete(ctx context.Context, key string) error {
	return s.mutate(ctx, func(records map[string]V) {
		delete(records, key)
	})
}

// Clear wipes every record.
func (s *Store[V]) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(records map[string]V) {
		for k := range records {
			delete(records, k)
		}
	})
}

func (s *Store[V]) mutate(ctx context.Context, fn func(map[string]V)) error {
	s.mu.Lock()
	fn(s.records)
	snapshot := s.copyLocked()
	payload, err := Encode(s.records, s.opts.Field, s.opts.Version)
	if err == nil {
		err = s.backend.Save(ctx, s.opts.Key, payload)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Failed to persist state", map[string]interface{}{
			"error": err.Error(),
		})
		err = fmt.Errorf("failed to persist %s: %w", s.opts.Key, err)
	}
	s.notify(snapshot)
	return err
}

// Subscribe registers fn to receive a snapshot after every mutation and
// returns a function that removes it.
func (s *Store[V]) Subscribe(fn func(map[string]V)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store[V]) notify(snapshot map[string]V) {
	s.subMu.Lock()
	subs := make([]func(map[string]V), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}
