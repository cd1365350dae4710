// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cache is a keyed, TTL-based store with an in-memory hot layer
// backed by one file per key on disk. Callers memoize expensive work
// (typically network calls) by key; the cache does not interpret keys.
//
// Entries expire lazily: an expired or unreadable backing file is treated
// as a miss, never as an error, and is left on disk until the key is
// rewritten, deleted, or an explicit Sweep runs.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// DefaultTTL is used when Config.DefaultTTL is unset.
const DefaultTTL = time.Hour

// entryExt is the extension of every backing file in the cache directory.
const entryExt = ".cache.json"

// ErrNotInitialized is returned by mutating operations before Init.
var ErrNotInitialized = errors.New("cache: not initialized")

// Config configures a Service.
type Config struct {
	// Dir is the storage directory, exclusively owned by this instance.
	Dir string
	// DefaultTTL applies to Set calls without an explicit TTL.
	DefaultTTL time.Duration
}

// entry is the wire form of a cached record: the expiry as milliseconds
// since the epoch plus the caller's value, still encoded.
type entry struct {
	ExpiresAt int64           `json:"expiresAt"`
	Value     json.RawMessage `json:"value"`
}

// expired reports whether the entry is stale at t. Equality counts as
// expired.
func (e entry) expired(t time.Time) bool {
	return t.UnixMilli() >= e.ExpiresAt
}

// Service is a single-process cache. The index mutex only protects the map
// itself; there is no cross-call coordination, so two GetOrSet calls for
// the same key may both compute.
type Service struct {
	dir        string
	defaultTTL time.Duration

	mu    sync.Mutex
	index map[string]entry
	ready bool
}

// New constructs a Service. Init must complete before any other call.
func New(cfg Config) *Service {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		dir:        cfg.Dir,
		defaultTTL: ttl,
		index:      make(map[string]entry),
	}
}

// Init creates the storage directory tree. Idempotent. Failure here is
// fatal for the instance and must be propagated by the caller.
func (s *Service) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	return nil
}

// Dir returns the storage directory.
func (s *Service) Dir() string {
	return s.dir
}

// Len returns the number of backing files currently in the directory,
// valid or not. Purely informational; expired files still count until a
// write or sweep removes them.
func (s *Service) Len() int {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+entryExt))
	if err != nil {
		return 0
	}
	return len(matches)
}

// GetRaw returns the still-encoded value for key, or false on a miss.
// The memory index is consulted first; on an index miss the backing file is
// read and, when valid, promoted into the index. Unreadable or expired
// files are misses, and the file is left in place.
func (s *Service) GetRaw(key string) (json.RawMessage, bool) {
	now := time.Now()

	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return nil, false
	}
	if e, ok := s.index[key]; ok && !e.expired(now) {
		s.mu.Unlock()
		return e.Value, true
	}
	s.mu.Unlock()

	raw, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Debugf("cache: unreadable entry for %q: %v", key, err)
		return nil, false
	}
	if e.expired(now) {
		log.Debugf("cache: expired entry for %q", key)
		return nil, false
	}

	s.mu.Lock()
	s.index[key] = e
	s.mu.Unlock()

	return e.Value, true
}

// SetRaw stores value under key, replacing any prior entry, with the given
// TTL or the configured default. The memory index is updated first, then
// the backing file is overwritten whole.
func (s *Service) SetRaw(key string, value json.RawMessage, ttl ...time.Duration) error {
	d := s.defaultTTL
	if len(ttl) == 1 && ttl[0] > 0 {
		d = ttl[0]
	}

	e := entry{
		ExpiresAt: time.Now().Add(d).UnixMilli(),
		Value:     value,
	}

	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	s.index[key] = e
	s.mu.Unlock()

	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(s.entryPath(key), raw, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// Delete removes key from the index and its backing file. A nonexistent
// key is a no-op.
func (s *Service) Delete(key string) error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	delete(s.index, key)
	s.mu.Unlock()

	if err := os.Remove(s.entryPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// Clear empties the index and removes every entry file in the directory.
func (s *Service) Clear() error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	s.index = make(map[string]entry)
	s.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+entryExt))
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cache entry: %w", err)
		}
	}
	return nil
}

// Sweep removes entry files that are expired or unreadable and drops any
// matching index entries. Best-effort; per-file failures are logged, not
// returned. Never invoked implicitly. Returns the number of files removed.
func (s *Service) Sweep() int {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+entryExt))
	if err != nil {
		log.WithError(err).Warn("cache sweep failed to list entries")
		return 0
	}

	now := time.Now()
	removed := 0
	for _, m := range matches {
		raw, err := os.ReadFile(m)
		var e entry
		if err == nil {
			if err := json.Unmarshal(raw, &e); err == nil && !e.expired(now) {
				continue
			}
		}
		if err := os.Remove(m); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", m)
			continue
		}
		log.Debugf("removed cache file %s", m)
		removed++
	}

	if removed > 0 {
		s.mu.Lock()
		for key, e := range s.index {
			if e.expired(now) {
				delete(s.index, key)
			}
		}
		s.mu.Unlock()
	}

	return removed
}

// EntryInfo describes one backing file, for inspection commands.
type EntryInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Entries lists the backing files currently in the directory.
func (s *Service) Entries() ([]EntryInfo, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+entryExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}

	infos := make([]EntryInfo, 0, len(matches))
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			continue
		}
		infos = append(infos, EntryInfo{
			Name:    filepath.Base(m),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return infos, nil
}

func (s *Service) entryPath(key string) string {
	return filepath.Join(s.dir, SanitizeKey(key)+entryExt)
}

// SanitizeKey maps every rune outside [a-zA-Z0-9-_] to '_' to produce a
// filename-safe form. The mapping is many-to-one: keys that differ only in
// substituted runes share a backing file, and the last write wins. Callers
// that need collision resistance should pre-hash their keys.
func SanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}

// Get returns the decoded value for key. Decode failures degrade to a miss
// like any other unreadable entry.
func Get[T any](s *Service, key string) (T, bool) {
	var v T
	raw, ok := s.GetRaw(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Debugf("cache: failed to decode entry for %q: %v", key, err)
		var zero T
		return zero, false
	}
	return v, true
}

// Set encodes value and stores it under key. Unlike read-side failures,
// an encode failure is surfaced to the caller.
func Set[T any](s *Service, key string, value T, ttl ...time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return s.SetRaw(key, raw, ttl...)
}

// GetOrSet returns the cached value for key, or invokes compute and caches
// the result. A compute failure propagates unchanged and nothing is
// written. A failure to persist the computed value is logged but does not
// fail the call, since the value itself is good. Concurrent callers for
// the same key may both compute; the cache promises "possibly already
// computed", not exactly-once.
func GetOrSet[T any](s *Service, key string, compute func() (T, error), ttl ...time.Duration) (T, error) {
	if v, ok := Get[T](s, key); ok {
		log.Debugf("cache hit: %s", key)
		return v, nil
	}

	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}

	if err := Set(s, key, v, ttl...); err != nil {
		log.WithError(err).Warnf("failed to cache value for %s", key)
	}
	return v, nil
}
