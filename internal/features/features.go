// Package features resolves per-environment feature flags.
//
// Flags come from built-in defaults, optionally overridden by a YAML file:
//
//	defaults:
//	  generation: true
//	environments:
//	  production:
//	    generation: false
//
// The file can be watched and hot-reloaded with Watch. Unknown flags are
// disabled.
package features

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Known flag names.
const (
	Auth        = "auth"
	Collections = "collections"
	Flashcards  = "flashcards"
	Generation  = "generation"
)

// Defaults enables every known feature.
func Defaults() map[string]bool {
	return map[string]bool{Auth: true, Collections: true, Flashcards: true, Generation: true}
}

type fileFormat struct {
	Defaults     map[string]bool            `yaml:"defaults"`
	Environments map[string]map[string]bool `yaml:"environments"`
}

// Flags is a concurrency-safe view of the flags of one environment.
type Flags struct {
	env      string
	defaults map[string]bool

	mu     sync.RWMutex
	values map[string]bool
}

// New returns flags for env seeded with defaults.
func New(env string, defaults map[string]bool) *Flags {
	f := &Flags{env: strings.ToLower(strings.TrimSpace(env)), defaults: maps.Clone(defaults)}
	if f.defaults == nil {
		f.defaults = map[string]bool{}
	}
	f.values = maps.Clone(f.defaults)
	return f
}

// Env returns the environment the flags resolve for.
func (f *Flags) Env() string { return f.env }

// IsEnabled reports whether name is on in the current environment.
func (f *Flags) IsEnabled(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[name]
}

// Snapshot returns a copy of all flag values.
func (f *Flags) Snapshot() map[string]bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.values)
}

// Names returns the known flag names, sorted.
func (f *Flags) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.values))
	for k := range f.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set overrides one flag in memory. Used by tests and admin tooling.
func (f *Flags) Set(name string, on bool) {
	f.mu.Lock()
	f.values[name] = on
	f.mu.Unlock()
}

// Load replaces the flag values with defaults < file defaults < file
// environment section.
func (f *Flags) Load(data []byte) error {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("features: parse: %w", err)
	}

	next := maps.Clone(f.defaults)
	maps.Copy(next, doc.Defaults)
	for env, vals := range doc.Environments {
		if strings.EqualFold(env, f.env) {
			maps.Copy(next, vals)
		}
	}

	f.mu.Lock()
	f.values = next
	f.mu.Unlock()
	return nil
}

// LoadFile reads and applies path.
func (f *Flags) LoadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return fmt.Errorf("features: read %s: %w", path, err)
	}
	return f.Load(data)
}

// Watch reloads path whenever it changes until ctx is done. Reload errors
// are logged and keep the previous values.
func (f *Flags) Watch(ctx context.Context, path string, log zerolog.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("features: resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("features: watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors replace files by rename.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("features: watch %s: %w", filepath.Dir(abs), err)
	}

	const debounce = 100 * time.Millisecond
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := f.LoadFile(abs); err != nil {
					log.Warn().Err(err).Str("path", abs).Msg("feature flags reload failed")
					return
				}
				log.Info().Str("path", abs).Interface("flags", f.Snapshot()).Msg("feature flags reloaded")
			})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("feature flags watcher error")
		}
	}
}
