// Package module holds the cross-module port registry
package module

import "sync"

// One process, one registry: mains register each module's ports after
// construction and fetch peers by name when wiring
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores the port set for a module name
func Register(name string, ports any) {
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// PortsAs fetches the port set for name and asserts it to T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// Reset clears the registry between tests
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
