package services

import (
	"fmt"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = make(map[string]interface{})
)

// Register publishes a service under name so that modules can reach each
// other through the interfaces in this package. A name can only be taken once.
func Register(name string, service interface{}) error {
	if service == nil {
		return fmt.Errorf("service %q is nil", name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, taken := registry[name]; taken {
		return fmt.Errorf("service %q already registered", name)
	}
	registry[name] = service
	return nil
}

// GetService looks up name and asserts it to T
func GetService[T any](name string) (T, error) {
	var zero T

	mu.RLock()
	service, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("service %q not found", name)
	}

	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %q is %T, not the requested type", name, service)
	}
	return typed, nil
}

// All returns a copy of every registered service keyed by name
func All() map[string]interface{} {
	mu.RLock()
	defer mu.RUnlock()

	out := make(map[string]interface{}, len(registry))
	for name, service := range registry {
		out[name] = service
	}
	return out
}

// Reset drops every registered service
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]interface{})
}
