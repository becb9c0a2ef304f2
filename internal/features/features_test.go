package features

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flagsYAML = `
defaults:
  generation: true
  beta: true
environments:
  production:
    generation: false
`

func TestFlags_DefaultsAndUnknown(t *testing.T) {
	f := New("development", Defaults())

	assert.True(t, f.IsEnabled(Generation))
	assert.True(t, f.IsEnabled(Auth))
	assert.False(t, f.IsEnabled("does-not-exist"))
	assert.Equal(t, []string{Auth, Collections, Flashcards, Generation}, f.Names())
}

func TestFlags_LoadAppliesEnvironmentSection(t *testing.T) {
	prod := New("Production", Defaults())
	require.NoError(t, prod.Load([]byte(flagsYAML)))
	assert.False(t, prod.IsEnabled(Generation))
	assert.True(t, prod.IsEnabled("beta"))
	assert.True(t, prod.IsEnabled(Auth))

	dev := New("development", Defaults())
	require.NoError(t, dev.Load([]byte(flagsYAML)))
	assert.True(t, dev.IsEnabled(Generation))
}

func TestFlags_LoadRejectsInvalidYAMLAndKeepsValues(t *testing.T) {
	f := New("production", Defaults())
	require.NoError(t, f.Load([]byte(flagsYAML)))

	err := f.Load([]byte("defaults: [unterminated"))
	require.Error(t, err)
	assert.False(t, f.IsEnabled(Generation))
}

func TestFlags_SnapshotIsCopy(t *testing.T) {
	f := New("dev", Defaults())
	s := f.Snapshot()
	s[Auth] = false
	assert.True(t, f.IsEnabled(Auth))
}

func TestFlags_WatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  generation: true\n"), 0o600))

	f := New("development", Defaults())
	require.NoError(t, f.LoadFile(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- f.Watch(ctx, path, zerolog.Nop()) }()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  generation: false\n"), 0o600))

	assert.Eventually(t, func() bool { return !f.IsEnabled(Generation) }, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
