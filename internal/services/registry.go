package services

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Registry manages backing service checkers
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	timeout  time.Duration
}

// NewRegistry creates a new service registry
func NewRegistry() *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		timeout:  2 * time.Second,
	}
}

// Register adds a checker to the registry
func (r *Registry) Register(name string, checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Unregister removes a checker from the registry
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
}

// List returns all registered service names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheckAll pings every registered service concurrently, each bounded
// by the registry timeout
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := make(map[string]Checker, len(r.checkers))
	for name, c := range r.checkers {
		checkers[name] = c
	}
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]error, len(checkers))
	)
	for name, c := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			err := c.Ping(cctx)

			mu.Lock()
			results[name] = err
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}

// Healthy reports whether every registered service answered
func (r *Registry) Healthy(ctx context.Context) bool {
	for _, err := range r.HealthCheckAll(ctx) {
		if err != nil {
			return false
		}
	}
	return true
}
