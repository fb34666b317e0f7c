package watchlist

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigCache loads watchlist definitions from a directory of YAML files
// and serves them from memory.
type ConfigCache struct {
	dir   string
	cache map[string]*Watchlist
	mu    sync.RWMutex
}

func NewConfigCache(dir string) *ConfigCache {
	return &ConfigCache{
		dir:   dir,
		cache: make(map[string]*Watchlist),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.dir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.dir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		name := fileName[:len(fileName)-4] // Remove .yml extension

		wl, err := cc.Load(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Watchlist loaded", "watchlist", name, "codes", len(wl.Codes), "days", wl.Days)
	}

	return nil
}

func (cc *ConfigCache) Load(name string) (*Watchlist, error) {
	file := filepath.Join(cc.dir, name+".yml")

	wl, err := cc.parse(file)
	if err != nil {
		return nil, err
	}

	wl.Name = name

	if err := cc.validate(wl); err != nil {
		return nil, fmt.Errorf("invalid watchlist %s: %w", file, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[wl.Name] = wl

	return wl, nil
}

func (cc *ConfigCache) Get(name string) (*Watchlist, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	wl, ok := cc.cache[name]
	if !ok {
		return nil, fmt.Errorf("watchlist '%s' not found", name)
	}
	return wl, nil
}

func (cc *ConfigCache) GetAll() map[string]*Watchlist {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	copied := make(map[string]*Watchlist, len(cc.cache))
	for k, v := range cc.cache {
		copied[k] = v
	}
	return copied
}

func (cc *ConfigCache) Count() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parse(file string) (*Watchlist, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if wl.Days == 0 {
		wl.Days = 12
	}

	return &wl, nil
}

func (cc *ConfigCache) validate(wl *Watchlist) error {
	if wl == nil {
		return fmt.Errorf("watchlist is nil")
	}
	if wl.Title == "" {
		return fmt.Errorf("title is required")
	}
	if wl.Days < 0 {
		return fmt.Errorf("days must be non-negative")
	}
	return nil
}
