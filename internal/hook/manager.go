package hook

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ManifestFile is the manifest name looked up in each hook directory.
const ManifestFile = "hook.json"

// ErrHookNotFound is returned when a requested hook cannot be found.
var ErrHookNotFound = errors.New("hook not found")

// Manager manages hook discovery and dispatch.
type Manager struct {
	hookDir  string
	hooks    map[string]*Hook
	executor *Executor
	mu       sync.RWMutex
}

// NewManager creates a new hook Manager for the given directory.
func NewManager(hookDir string, executor *Executor) *Manager {
	if executor == nil {
		executor = NewExecutor(DefaultTimeout)
	}
	return &Manager{
		hookDir:  hookDir,
		hooks:    make(map[string]*Hook),
		executor: executor,
	}
}

// Discover scans the hook directory for hook.json files and loads them.
// Directories without a readable, valid manifest are skipped.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hooks = make(map[string]*Hook)

	if m.hookDir == "" {
		return nil
	}

	info, err := os.Stat(m.hookDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.hookDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		hookPath := filepath.Join(m.hookDir, entry.Name())
		manifestData, err := os.ReadFile(filepath.Join(hookPath, ManifestFile))
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(manifestData, &manifest); err != nil {
			log.Printf("Skipping hook %s: invalid manifest: %v", entry.Name(), err)
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			log.Printf("Skipping hook %s: manifest needs name and executable", entry.Name())
			continue
		}

		m.hooks[manifest.Name] = &Hook{
			Manifest:   manifest,
			Path:       hookPath,
			Executable: filepath.Join(hookPath, manifest.Executable),
		}
	}

	return nil
}

// Get returns a hook by name.
func (m *Manager) Get(name string) (*Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hook, ok := m.hooks[name]
	if !ok {
		return nil, ErrHookNotFound
	}

	return hook, nil
}

// List returns all discovered hooks sorted by name.
func (m *Manager) List() []*Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hooks := make([]*Hook, 0, len(m.hooks))
	for _, hook := range m.hooks {
		hooks = append(hooks, hook)
	}
	sort.Slice(hooks, func(i, j int) bool {
		return hooks[i].Manifest.Name < hooks[j].Manifest.Name
	})

	return hooks
}

// Dispatch runs every hook subscribed to the event, one after another, and
// returns the number that reported success. Failures are logged.
func (m *Manager) Dispatch(ctx context.Context, event Event) int {
	ok := 0
	for _, hook := range m.List() {
		if !hook.Manifest.Subscribes(event.Type) {
			continue
		}

		resp, err := m.executor.Execute(ctx, hook, event)
		if err != nil {
			log.Printf("Hook %s error: %v", hook.Manifest.Name, err)
			continue
		}
		if !resp.Success {
			log.Printf("Hook %s reported failure: %s", hook.Manifest.Name, resp.Error)
			continue
		}
		ok++
	}
	return ok
}

// HookDir returns the hook directory path.
func (m *Manager) HookDir() string {
	return m.hookDir
}
