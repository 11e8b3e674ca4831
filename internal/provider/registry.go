package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

// Registry maps provider names to factories.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name. Names are case-insensitive.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load builds the provider named in cfg and initialises it with the
// connection string. Errors from Init are returned unchanged.
func (r *Registry) Load(cfg config.ProviderConfig, log Logger) (Output, error) {
	if log == nil {
		log = noopLogger{}
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		return nil, ErrProviderMissing
	}
	if strings.TrimSpace(cfg.Configuration) == "" {
		return nil, ErrConfigurationMissing.Withf("provider %s", name)
	}

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrProviderNotFound.Withf("%s (available: %s)", name, strings.Join(r.Names(), ", "))
	}

	out, err := build(factory, log)
	if err != nil {
		return nil, ErrProviderLoad.With(fmt.Errorf("%s: %w", name, err))
	}

	if err := out.Init(cfg.Configuration); err != nil {
		return nil, err
	}

	log.Info("output provider loaded", "provider", name)
	return out, nil
}

// build runs the factory, turning a panic or a nil result into an error.
func build(f Factory, log Logger) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("factory panic: %v", r)
		}
	}()

	out, err = f(log)
	if err == nil && out == nil {
		err = fmt.Errorf("factory returned no provider")
	}
	return out, err
}
