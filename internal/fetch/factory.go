package fetch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/raysh454/addrmeta/internal/logging"
)

// BackendConstructor constructs a Fetcher given the config and logger.
type BackendConstructor func(cfg Config, logger logging.Logger) (Fetcher, error)

var (
	mu       sync.RWMutex
	registry = map[string]BackendConstructor{}
)

// RegisterBackend registers a named backend constructor. Name is lower-cased
// internally. Calling RegisterBackend with the same name overwrites the previous
// constructor.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// New constructs the configured backend. It returns an error if the named
// backend has not been registered.
func New(cfg Config, logger logging.Logger) (Fetcher, error) {
	backend := strings.ToLower(strings.TrimSpace(string(cfg.Backend)))
	if backend == "" {
		backend = string(BackendFixture)
	}

	mu.RLock()
	ctor, ok := registry[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("fetch backend %q not registered: available backends=%v", backend, ListBackends())
	}

	f, err := ctor(cfg, logging.OrNop(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to construct fetch backend %q: %w", backend, err)
	}
	if f == nil {
		return nil, errors.New("fetch backend constructor returned nil")
	}
	return f, nil
}

// ListBackends returns the registered backend names, sorted.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
