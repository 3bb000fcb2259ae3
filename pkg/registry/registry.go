// Package registry implements the process-wide, append-only node
// catalog: a read-after-startup map of node name to NodeInfo, with the
// unified decision node (and its synonyms) hidden from the public
// listing so it can never route to itself.
package registry

import (
	"fmt"
	"sync"

	"aurelia/pkg/graph"
)

// Registry is a discoverable catalog of node definitions.
type Registry struct {
	mu       sync.RWMutex
	nodes    map[string]graph.NodeInfo
	hidden   map[string]bool
	sealed   bool
}

// New creates an empty Registry. hiddenNames lists the decision node's
// own name plus any synonyms that must never appear in the public,
// tool-routable listing.
func New(hiddenNames ...string) *Registry {
	hidden := make(map[string]bool, len(hiddenNames))
	for _, n := range hiddenNames {
		hidden[n] = true
	}
	return &Registry{
		nodes:  make(map[string]graph.NodeInfo),
		hidden: hidden,
	}
}

// Register installs a handler under info.Name. Re-registration of the
// same name is an error — the catalog is append-only.
func (r *Registry) Register(info graph.NodeInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("registry: cannot register %q after Seal", info.Name)
	}
	if _, exists := r.nodes[info.Name]; exists {
		return fmt.Errorf("registry: node %q is already registered", info.Name)
	}
	if info.Handler == nil {
		return fmt.Errorf("registry: node %q has no handler", info.Name)
	}
	r.nodes[info.Name] = info
	return nil
}

// Seal marks the registry read-only. Calling Register afterwards
// returns an error. Reads never require locking discipline beyond the
// RWMutex already in place; Seal exists to make the "read-only after
// startup" invariant explicit and testable.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Get returns a node's full info (including its handler) by name.
func (r *Registry) Get(name string) (graph.NodeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.nodes[name]
	return info, ok
}

// ListPublic returns the catalog with handlers stripped and the
// decision node (plus its synonyms) excluded, so the decision node
// never sees itself as a candidate tool.
func (r *Registry) ListPublic() map[string]graph.NodeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]graph.NodeInfo, len(r.nodes))
	for name, info := range r.nodes {
		if r.hidden[name] {
			continue
		}
		public := info
		public.Handler = nil
		out[name] = public
	}
	return out
}

// ListAll returns every registered node, handlers included. Used by
// the executor to dispatch, never exposed to the decision node's prompt.
func (r *Registry) ListAll() map[string]graph.NodeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]graph.NodeInfo, len(r.nodes))
	for name, info := range r.nodes {
		out[name] = info
	}
	return out
}
