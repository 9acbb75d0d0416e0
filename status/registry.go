package status

import (
	"sort"
	"strconv"
	"sync"

	"go.uber.org/atomic"
)

// Registry is the session metrics facade
// Writers cache the returned pointers; lookups lock, reads and writes of values do not
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
	flags    map[string]*atomic.Bool
	labels   map[string]*atomic.String
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*atomic.Int64),
		flags:    make(map[string]*atomic.Bool),
		labels:   make(map[string]*atomic.String),
	}
}

// Counter returns the named counter, creating it at zero
func (r *Registry) Counter(name string) *atomic.Int64 {
	return lookup(&r.mu, r.counters, name, atomic.NewInt64)
}

// Flag returns the named flag, creating it false
func (r *Registry) Flag(name string) *atomic.Bool {
	return lookup(&r.mu, r.flags, name, atomic.NewBool)
}

// Label returns the named label, creating it empty
func (r *Registry) Label(name string) *atomic.String {
	return lookup(&r.mu, r.labels, name, atomic.NewString)
}

// Metric is one rendered entry of a snapshot
type Metric struct {
	Name  string
	Value string
}

// Snapshot renders every metric sorted by name
func (r *Registry) Snapshot() []Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metric, 0, len(r.counters)+len(r.flags)+len(r.labels))
	for k, v := range r.counters {
		out = append(out, Metric{Name: k, Value: strconv.FormatInt(v.Load(), 10)})
	}
	for k, v := range r.flags {
		out = append(out, Metric{Name: k, Value: strconv.FormatBool(v.Load())})
	}
	for k, v := range r.labels {
		out = append(out, Metric{Name: k, Value: v.Load()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of registered metrics
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.counters) + len(r.flags) + len(r.labels)
}

func lookup[T any, Z any](mu *sync.RWMutex, m map[string]*T, key string, create func(Z) *T) *T {
	mu.RLock()
	if ptr, ok := m[key]; ok {
		mu.RUnlock()
		return ptr
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok := m[key]; ok {
		return ptr
	}
	var zero Z
	ptr := create(zero)
	m[key] = ptr
	return ptr
}
