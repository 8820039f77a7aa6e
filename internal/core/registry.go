package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[Format]FormatDefinition)
	registryMu sync.RWMutex
)

// Register adds a format definition to the registry.
// Panics if the format is already registered or has no builder.
func Register(def FormatDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Format]; exists {
		panic(fmt.Sprintf("format already registered: %s", def.Format))
	}
	if def.Build == nil {
		panic(fmt.Sprintf("format %s has no builder", def.Format))
	}
	if def.Label == "" {
		def.Label = string(def.Format)
	}

	registry[def.Format] = def
}

// Get returns a format definition by name.
// Returns false if not found.
func Get(f Format) (FormatDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[f]
	return def, ok
}

// All returns all registered definitions in detection order.
// Ties on Order are broken by format name for consistent ordering.
func All() []FormatDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]FormatDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Format < result[j].Format
	})

	return result
}
