package pgmodel

import (
	"sort"
	"sync"

	errors "golang.org/x/xerrors"
)

// Registry holds named connection pools and designates one of them as the default. It is safe for concurrent use.
type Registry struct {
	mux         sync.RWMutex
	pools       map[string]*Pool
	defaultName string
}

func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]*Pool)}
}

// Add registers pool under name. The first pool added becomes the default. Adding a name twice is an error.
func (r *Registry) Add(name string, pool *Pool) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	if _, ok := r.pools[name]; ok {
		return errors.Errorf("pool %q is already registered", name)
	}

	r.pools[name] = pool
	if r.defaultName == "" {
		r.defaultName = name
	}
	return nil
}

// AddDefault registers pool under name and makes it the default.
func (r *Registry) AddDefault(name string, pool *Pool) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	if _, ok := r.pools[name]; ok {
		return errors.Errorf("pool %q is already registered", name)
	}

	r.pools[name] = pool
	r.defaultName = name
	return nil
}

// SetDefault makes the pool registered under name the default.
func (r *Registry) SetDefault(name string) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	if _, ok := r.pools[name]; !ok {
		return errors.Errorf("no pool registered as %q", name)
	}
	r.defaultName = name
	return nil
}

// Default returns the default pool. ok is false if no pool is registered.
func (r *Registry) Default() (pool *Pool, ok bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()

	pool, ok = r.pools[r.defaultName]
	return pool, ok
}

func (r *Registry) Get(name string) (pool *Pool, ok bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()

	pool, ok = r.pools[name]
	return pool, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()

	names := make([]string, 0, len(r.pools))
	for name := range r.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove unregisters and closes the pool registered under name. When it was the default, the first remaining name
// in sorted order becomes the default.
func (r *Registry) Remove(name string) {
	r.mux.Lock()
	pool, ok := r.pools[name]
	if ok {
		delete(r.pools, name)
		if r.defaultName == name {
			r.defaultName = ""
			for n := range r.pools {
				if r.defaultName == "" || n < r.defaultName {
					r.defaultName = n
				}
			}
		}
	}
	r.mux.Unlock()

	if ok {
		pool.Close()
	}
}

// Close unregisters and closes every pool.
func (r *Registry) Close() {
	r.mux.Lock()
	pools := r.pools
	r.pools = make(map[string]*Pool)
	r.defaultName = ""
	r.mux.Unlock()

	for _, pool := range pools {
		pool.Close()
	}
}
