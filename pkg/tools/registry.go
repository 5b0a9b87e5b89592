// Package tools provides the capability registry and the built-in tools:
// web search, Wikipedia lookup, arXiv paper search, and a Python REPL.
package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/espalier/pkg/ports"
)

// Registry maps capability names to tools. It is populated once at
// construction and shared read-only afterwards; the lock covers hosts that
// register tools late.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ports.Tool
}

// NewRegistry creates a registry holding the given tools, keyed by Name().
func NewRegistry(ts ...ports.Tool) *Registry {
	r := &Registry{tools: make(map[string]ports.Tool, len(ts))}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register adds a tool. A tool with the same name is overwritten.
func (r *Registry) Register(t ports.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (ports.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Catalog renders a "name: description" line per tool for prompt building.
func (r *Registry) Catalog() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, r.tools[name].Description())
	}
	return b.String()
}
