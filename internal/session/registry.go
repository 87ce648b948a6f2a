package session

import (
	"sync"
	"time"
)

// DefaultIdleTTL is how long an unused store stays cached.
const DefaultIdleTTL = 30 * time.Minute

// Registry hands out one Store per client namespace, so each client's
// writes are serialized by its own store. Stores idle for longer than
// IdleTTL are dropped; their state lives in the repository, so the next
// request rebuilds them.
type Registry struct {
	// IdleTTL <= 0 keeps stores until Forget.
	IdleTTL time.Duration

	mu        sync.Mutex
	stores    map[string]*entry
	repo      func(namespace string) Repository
	users     UserSource
	opts      []Option
	now       func() time.Time
	lastSweep time.Time
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

func NewRegistry(repo func(namespace string) Repository, users UserSource, opts ...Option) *Registry {
	return &Registry{
		IdleTTL: DefaultIdleTTL,
		stores:  make(map[string]*entry),
		repo:    repo,
		users:   users,
		opts:    opts,
		now:     time.Now,
	}
}

func (r *Registry) For(namespace string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	if e, ok := r.stores[namespace]; ok {
		e.lastUsed = now
		return e.store
	}
	opts := make([]Option, 0, len(r.opts)+1)
	opts = append(opts, r.opts...)
	opts = append(opts, WithClientID(namespace))
	s := NewStore(r.repo(namespace), r.users, opts...)
	r.stores[namespace] = &entry{store: s, lastUsed: now}
	return s
}

// sweep runs at most twice per IdleTTL. Callers hold r.mu.
func (r *Registry) sweep(now time.Time) {
	if r.IdleTTL <= 0 || now.Sub(r.lastSweep) < r.IdleTTL/2 {
		return
	}
	r.lastSweep = now
	for ns, e := range r.stores {
		if now.Sub(e.lastUsed) > r.IdleTTL {
			delete(r.stores, ns)
		}
	}
}

// Forget drops the cached store; persisted state is untouched.
func (r *Registry) Forget(namespace string) {
	r.mu.Lock()
	delete(r.stores, namespace)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
