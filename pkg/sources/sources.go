// Package sources provides platform busy-time readers for cpuusage.
package sources

import (
	"runtime"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

// Auto selects the highest-priority source that opens successfully.
const Auto = "auto"

// Factory opens a source.
type Factory func() (cpuusage.Source, error)

// Entry describes a registered source.
type Entry struct {
	Name     string
	Scope    cpuusage.Scope
	Priority int
	factory  Factory
}

// Registry holds the sources available on this platform.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make([]Entry, 0),
	}
}

// Register adds a source factory. Higher priority wins under Auto.
func (r *Registry) Register(name string, scope cpuusage.Scope, priority int, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Name:     name,
		Scope:    scope,
		Priority: priority,
		factory:  f,
	})
}

// Entries returns the sources registered for scope, highest priority first.
func (r *Registry) Entries(scope cpuusage.Scope) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Entry
	for _, e := range r.entries {
		if e.Scope == scope {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// Scopes returns the distinct scopes that have at least one source, in
// name order.
func (r *Registry) Scopes() []cpuusage.Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[cpuusage.Scope]bool)
	var out []cpuusage.Scope
	for _, e := range r.entries {
		if !seen[e.Scope] {
			seen[e.Scope] = true
			out = append(out, e.Scope)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})
	return out
}

// Open opens the named source for scope.
func (r *Registry) Open(scope cpuusage.Scope, name string) (cpuusage.Source, error) {
	entries := r.Entries(scope)
	if len(entries) == 0 {
		return nil, errors.Errorf("no %s cpu sources available on %s", scope, runtime.GOOS)
	}

	if name == "" || name == Auto {
		var errs []string
		for _, e := range entries {
			src, err := e.factory()
			if err == nil {
				return src, nil
			}
			errs = append(errs, e.Name+": "+err.Error())
		}
		return nil, errors.Errorf("no %s cpu source could be opened: %v", scope, errs)
	}

	for _, e := range entries {
		if e.Name == name {
			src, err := e.factory()
			if err != nil {
				return nil, errors.Wrapf(err, "cannot open %s source %q", scope, name)
			}
			return src, nil
		}
	}
	return nil, errors.Errorf("unknown %s cpu source %q", scope, name)
}

// OpenAll opens every source registered for scope, skipping those that fail.
func (r *Registry) OpenAll(scope cpuusage.Scope) ([]cpuusage.Source, error) {
	var out []cpuusage.Source
	for _, e := range r.Entries(scope) {
		src, err := e.factory()
		if err != nil {
			continue
		}
		out = append(out, src)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("no %s cpu source could be opened", scope)
	}
	return out, nil
}

var defaultRegistry = NewRegistry()

// Default returns the registry populated with this platform's sources.
func Default() *Registry {
	return defaultRegistry
}

// Open opens a source from the default registry.
func Open(scope cpuusage.Scope, name string) (cpuusage.Source, error) {
	return defaultRegistry.Open(scope, name)
}

// Entries lists the default registry's sources for scope.
func Entries(scope cpuusage.Scope) []Entry {
	return defaultRegistry.Entries(scope)
}

// Scopes lists the default registry's scopes.
func Scopes() []cpuusage.Scope {
	return defaultRegistry.Scopes()
}

// OpenAll opens every source of the default registry for scope.
func OpenAll(scope cpuusage.Scope) ([]cpuusage.Source, error) {
	return defaultRegistry.OpenAll(scope)
}

// Cores returns the number of logical CPUs.
func Cores() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// failing is a source that never reads successfully.
type failing struct {
	scope cpuusage.Scope
	err   error
}

// Unavailable returns a source whose reads always fail with err. Samplers
// over it report 0.
func Unavailable(scope cpuusage.Scope, err error) cpuusage.Source {
	return &failing{scope: scope, err: err}
}

func (f *failing) Name() string          { return "unavailable" }
func (f *failing) Scope() cpuusage.Scope { return f.scope }

func (f *failing) Read() (cpuusage.Reading, error) {
	return cpuusage.Reading{}, f.err
}
