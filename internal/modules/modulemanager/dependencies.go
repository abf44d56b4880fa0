package modulemanager

import (
	"fmt"
	"sort"
	"strings"
)

// loadOrder sorts modules so that each one comes after the modules it
// depends on, directly or through a required service. Modules with no
// ordering constraint between them are sorted by ID.
func loadOrder(modules map[string]Module) ([]Module, error) {
	providers := make(map[string]string)
	for _, id := range sortedIDs(modules) {
		p, ok := modules[id].(ServiceProvider)
		if !ok {
			continue
		}
		for _, svc := range p.ProvidedServices() {
			if other, taken := providers[svc]; taken {
				return nil, fmt.Errorf("service %q is provided by both %s and %s", svc, other, id)
			}
			providers[svc] = id
		}
	}

	deps := make(map[string][]string, len(modules))
	for id, m := range modules {
		if p, ok := m.(DependencyProvider); ok {
			for _, dep := range p.Dependencies() {
				if _, exists := modules[dep]; !exists {
					return nil, fmt.Errorf("module %s depends on unknown module %s", id, dep)
				}
				deps[id] = append(deps[id], dep)
			}
		}
		if c, ok := m.(ServiceConsumer); ok {
			for _, svc := range c.RequiredServices() {
				if provider, found := providers[svc]; found && provider != id {
					deps[id] = append(deps[id], provider)
				}
			}
		}
	}

	// Kahn's algorithm over the reversed edges
	pending := make(map[string]int, len(modules))
	dependents := make(map[string][]string)
	for id := range modules {
		seen := make(map[string]bool)
		for _, dep := range deps[id] {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			pending[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []string
	for _, id := range sortedIDs(modules) {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]Module, 0, len(modules))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, modules[id])

		for _, next := range dependents[id] {
			pending[next]--
			if pending[next] == 0 {
				ready = append(ready, next)
			}
		}
		sort.Strings(ready)
	}

	if len(order) != len(modules) {
		var stuck []string
		for _, id := range sortedIDs(modules) {
			if pending[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, fmt.Errorf("circular module dependency between %s", strings.Join(stuck, ", "))
	}
	return order, nil
}

// missingServices reports required services that no module provides
func missingServices(modules map[string]Module) []string {
	provided := make(map[string]bool)
	for _, m := range modules {
		if p, ok := m.(ServiceProvider); ok {
			for _, svc := range p.ProvidedServices() {
				provided[svc] = true
			}
		}
	}

	var missing []string
	for _, id := range sortedIDs(modules) {
		c, ok := modules[id].(ServiceConsumer)
		if !ok {
			continue
		}
		for _, svc := range c.RequiredServices() {
			if !provided[svc] {
				missing = append(missing, id+" -> "+svc)
			}
		}
	}
	return missing
}

func sortedIDs(modules map[string]Module) []string {
	ids := make([]string, 0, len(modules))
	for id := range modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
