package permissions

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pjecz/casiopea/pkg/safestring"
)

// ModuleDefinition describes a module the application ships with.
type ModuleDefinition struct {
	Name              string
	ShortName         string
	Icon              string
	Route             string
	ShownInNavigation bool
}

type moduleRegistry struct {
	mu      sync.RWMutex
	modules map[string]*ModuleDefinition
}

var globalRegistry = &moduleRegistry{
	modules: make(map[string]*ModuleDefinition),
}

var (
	errNilModule     = errors.New("permission: nil module definition")
	errEmptyName     = errors.New("permission: module name is required")
	errDuplicateName = errors.New("permission: module already registered")
)

// Register adds a built-in module definition. Names are canonicalised.
func Register(def *ModuleDefinition) error {
	if def == nil {
		return errNilModule
	}

	name := safestring.Name(def.Name)
	if name == "" {
		return errEmptyName
	}

	cp := *def
	cp.Name = name
	if cp.ShortName == "" {
		cp.ShortName = name
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.modules[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateName, name)
	}
	globalRegistry.modules[name] = &cp
	return nil
}

// Get returns a copy of the definition registered under name.
func Get(name string) (*ModuleDefinition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	def, ok := globalRegistry.modules[safestring.Name(name)]
	if !ok {
		return nil, false
	}
	cp := *def
	return &cp, true
}

// GetAll returns copies of every definition ordered by name.
func GetAll() []*ModuleDefinition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make([]*ModuleDefinition, 0, len(globalRegistry.modules))
	for _, def := range globalRegistry.modules {
		cp := *def
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names lists registered module names in order.
func Names() []string {
	defs := GetAll()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

func unregister(name string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.modules, safestring.Name(name))
}
