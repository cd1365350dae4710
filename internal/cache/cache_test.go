// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	s := New(Config{Dir: t.TempDir(), DefaultTTL: ttl})
	require.NoError(t, s.Init())
	return s
}

func TestRoundTrip(t *testing.T) {
	s := newTestService(t, time.Hour)

	want := payload{Name: "fetch", Count: 42, Tags: []string{"a", "b"}}
	require.NoError(t, Set(s, "GET https://example.com/x?y=1", want))

	got, ok := Get[payload](s, "GET https://example.com/x?y=1")
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(want, got))
}

func TestExpiry(t *testing.T) {
	s := newTestService(t, time.Hour)

	require.NoError(t, Set(s, "k", "v", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, ok := Get[string](s, "k")
	assert.False(t, ok)
}

func TestDefaultTTL(t *testing.T) {
	// A short default makes Set-without-TTL observable.
	s := newTestService(t, 10*time.Millisecond)

	require.NoError(t, Set(s, "k", "v"))
	_, ok := Get[string](s, "k")
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = Get[string](s, "k")
	assert.False(t, ok)
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestService(t, time.Hour)

	assert.NoError(t, s.Delete("never-set"))

	require.NoError(t, Set(s, "k", 1))
	assert.NoError(t, s.Delete("k"))
	assert.NoError(t, s.Delete("k"))

	_, ok := Get[int](s, "k")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	s := newTestService(t, time.Hour)

	require.NoError(t, Set(s, "a", 1))
	require.NoError(t, Set(s, "b", 2))
	require.NoError(t, s.Clear())

	_, ok := Get[int](s, "a")
	assert.False(t, ok)
	_, ok = Get[int](s, "b")
	assert.False(t, ok)

	matches, err := filepath.Glob(filepath.Join(s.Dir(), "*"+entryExt))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	first := New(Config{Dir: dir})
	require.NoError(t, first.Init())
	require.NoError(t, Set(first, "k", payload{Name: "persisted"}))

	// A fresh instance on the same directory simulates a new process.
	second := New(Config{Dir: dir})
	require.NoError(t, second.Init())

	got, ok := Get[payload](second, "k")
	require.True(t, ok)
	assert.Equal(t, "persisted", got.Name)
}

func TestGetOrSetMemoizes(t *testing.T) {
	s := newTestService(t, time.Hour)

	calls := 0
	compute := func() (string, error) {
		calls++
		return "computed", nil
	}

	v, err := GetOrSet(s, "k", compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)

	v, err = GetOrSet(s, "k", compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)

	assert.Equal(t, 1, calls)
}

func TestGetOrSetComputeFailure(t *testing.T) {
	s := newTestService(t, time.Hour)

	boom := assert.AnError
	_, err := GetOrSet(s, "k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	// Nothing was cached, so a later success still computes.
	v, err := GetOrSet(s, "k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCorruptFileIsMiss(t *testing.T) {
	s := newTestService(t, time.Hour)

	require.NoError(t, Set(s, "k", "good"))

	path := filepath.Join(s.Dir(), SanitizeKey("k")+entryExt)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	// Force a disk read by using a fresh instance.
	fresh := New(Config{Dir: s.Dir()})
	require.NoError(t, fresh.Init())

	_, ok := Get[string](fresh, "k")
	assert.False(t, ok)

	// The corrupt file is left in place until the next write.
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestLastWriteWins(t *testing.T) {
	s := newTestService(t, time.Hour)

	require.NoError(t, Set(s, "k", "first"))
	require.NoError(t, Set(s, "k", "second"))

	got, ok := Get[string](s, "k")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestOpsBeforeInit(t *testing.T) {
	s := New(Config{Dir: filepath.Join(t.TempDir(), "sub")})

	// Mutations surface the sentinel.
	assert.ErrorIs(t, Set(s, "k", 1), ErrNotInitialized)
	assert.ErrorIs(t, s.Delete("k"), ErrNotInitialized)
	assert.ErrorIs(t, s.Clear(), ErrNotInitialized)

	// Reads have no error channel; before Init they are plain misses.
	_, ok := Get[int](s, "k")
	assert.False(t, ok)
	_, ok = s.GetRaw("k")
	assert.False(t, ok)
}

func TestLen(t *testing.T) {
	s := newTestService(t, time.Hour)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, Set(s, "a", 1))
	require.NoError(t, Set(s, "b", 2, 5*time.Millisecond))
	assert.Equal(t, 2, s.Len())

	// Expired files still count until removed.
	time.Sleep(15 * time.Millisecond)
	assert.Equal(t, 2, s.Len())

	s.Sweep()
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
}

func TestInitFailure(t *testing.T) {
	// A regular file where the directory should go makes MkdirAll fail.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	s := New(Config{Dir: filepath.Join(blocker, "cache")})
	assert.Error(t, s.Init())
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "already safe", key: "plain-Key_09", want: "plain-Key_09"},
		{name: "url key", key: "GET https://x.io/a?b=1", want: "GET_https___x_io_a_b_1"},
		{name: "colons and slashes", key: "a:b/c", want: "a_b_c"},
		{name: "empty", key: "", want: ""},
		{name: "unicode", key: "héllo", want: "h_llo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeKey(tt.key))
		})
	}
}

func TestSanitizeCollision(t *testing.T) {
	// Documented behavior: keys differing only in substituted runes share a
	// backing file, last write wins on disk. The memory index still keeps
	// them distinct within one instance.
	dir := t.TempDir()

	s := New(Config{Dir: dir})
	require.NoError(t, s.Init())
	require.NoError(t, Set(s, "a:b", 1))
	require.NoError(t, Set(s, "a/b", 2))

	fresh := New(Config{Dir: dir})
	require.NoError(t, fresh.Init())
	got, ok := Get[int](fresh, "a:b")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestSweep(t *testing.T) {
	s := newTestService(t, time.Hour)

	require.NoError(t, Set(s, "live", 1))
	require.NoError(t, Set(s, "dead", 2, 5*time.Millisecond))
	require.NoError(t, os.WriteFile(
		filepath.Join(s.Dir(), "junk"+entryExt), []byte("garbage"), 0o600))

	time.Sleep(15 * time.Millisecond)

	assert.Equal(t, 2, s.Sweep())

	_, ok := Get[int](s, "live")
	assert.True(t, ok)

	entries, err := s.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExpiredFileLingersAfterGet(t *testing.T) {
	s := newTestService(t, time.Hour)

	require.NoError(t, Set(s, "k", "v", 5*time.Millisecond))
	time.Sleep(15 * time.Millisecond)

	_, ok := Get[string](s, "k")
	require.False(t, ok)

	// Get never removes the stale file.
	path := filepath.Join(s.Dir(), SanitizeKey("k")+entryExt)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
