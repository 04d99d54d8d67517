package poller

import "sync"

// Registry owns the current ordered set of monitored point names and keeps
// the state store membership in lockstep: every registered name has exactly
// one state entry and vice versa.
type Registry struct {
	mu    sync.RWMutex
	names []string
	set   map[string]struct{}
	store *StateStore
}

// NewRegistry creates an empty registry bound to a state store.
func NewRegistry(store *StateStore) *Registry {
	return &Registry{
		set:   make(map[string]struct{}),
		store: store,
	}
}

// Names returns the current ordered point set.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered points.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Contains reports membership of name.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.set[name]
	return ok
}

// Reconcile replaces the registered set with fresh, applied as an add/remove
// delta: new names get a fresh state entry, removed names lose theirs, and
// names present in both keep their accumulated state untouched. Calling it
// with an identical set is a no-op.
func (r *Registry) Reconcile(fresh []string) (added, removed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	freshSet := make(map[string]struct{}, len(fresh))
	for _, name := range fresh {
		freshSet[name] = struct{}{}
	}

	for _, name := range fresh {
		if _, ok := r.set[name]; !ok {
			added = append(added, name)
		}
	}
	for _, name := range r.names {
		if _, ok := freshSet[name]; !ok {
			removed = append(removed, name)
		}
	}

	for _, name := range added {
		r.store.Seed(name)
	}
	for _, name := range removed {
		r.store.Forget(name)
	}

	// Swap the set only after the deltas are applied.
	r.names = make([]string, len(fresh))
	copy(r.names, fresh)
	r.set = freshSet

	return added, removed
}
