package watcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/layout"
)

type recordingSetter struct {
	mu     sync.Mutex
	local  []layout.Profile
	global []layout.Profile
	err    error
}

func (r *recordingSetter) SetProfiles(local, global layout.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.local = append(r.local, local)
	r.global = append(r.global, global)
	return nil
}

func (r *recordingSetter) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.local)
}

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atelier.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	var fired atomic.Int32
	w := New(path, func() { fired.Add(1) }, log.New(io.Discard)).WithDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give fsnotify time to register the directory
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return fired.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "burst of writes collapses to one reload")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "gone", "atelier.yaml"), func() {}, log.New(io.Discard))
	assert.Error(t, w.Watch(context.Background()))
}

func TestProfileReloader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atelier.yaml")
	logger := log.New(io.Discard)

	t.Run("applies overrides", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`
layout:
  profiles:
    local:
      iterations: 120
    global:
      gravity_strength: 0.02
`), 0o644))

		target := &recordingSetter{}
		ProfileReloader(path, target, logger)()

		require.Equal(t, 1, target.calls())
		assert.Equal(t, 120, target.local[0].Iterations)
		assert.Equal(t, 0.02, target.global[0].GravityStrength)
		assert.Equal(t, layout.GlobalProfile().Iterations, target.global[0].Iterations)
	})

	t.Run("broken file keeps current profiles", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("layout: [oops"), 0o644))

		target := &recordingSetter{}
		ProfileReloader(path, target, logger)()
		assert.Equal(t, 0, target.calls())
	})

	t.Run("setter errors are absorbed", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

		target := &recordingSetter{err: errors.New("rejected")}
		assert.NotPanics(t, ProfileReloader(path, target, logger))
	})
}
