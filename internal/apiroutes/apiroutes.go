// Package apiroutes keeps a catalog of the registered HTTP endpoints
// served by /api/list-endpoints/.
package apiroutes

import (
	"sort"
	"sync"
)

// Route describes one registered endpoint
type Route struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

var (
	mu     sync.RWMutex
	routes = make(map[string]Route)
)

// Register records an endpoint. Registering the same method and path
// again replaces its description.
func Register(path, method, description string) {
	mu.Lock()
	defer mu.Unlock()
	routes[method+" "+path] = Route{Path: path, Method: method, Description: description}
}

// Get returns every endpoint sorted by path, then method
func Get() []Route {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Reset forgets every endpoint
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	routes = make(map[string]Route)
}
