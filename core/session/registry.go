package session

import (
	"sync"
	"time"
)

// Registry hands out one Manager per browser session id, creating them on
// demand and dropping them again once their session goes anonymous.
type Registry struct {
	store  Store
	sched  Scheduler
	maxArm time.Duration

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(store Store, sched Scheduler, maxArm time.Duration) *Registry {
	return &Registry{
		store:    store,
		sched:    sched,
		maxArm:   maxArm,
		managers: make(map[string]*Manager),
	}
}

// Manager returns the Manager for the given session id, creating it if needed.
func (r *Registry) Manager(sid string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[sid]; ok {
		return m
	}
	m := NewManager(sid, r.store, r.sched, r.maxArm)
	m.OnLogout(func() { r.evict(sid) })
	r.managers[sid] = m
	return m
}

func (r *Registry) evict(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, sid)
}

// Len reports how many managers are live; exposed for ops visibility.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}
