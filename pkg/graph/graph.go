// Package graph implements a minimal directed state machine: named nodes
// sequenced by unconditional and conditional edges over a single mutable
// state. The topology is fixed at Compile time and verified acyclic there;
// execution is a plain walk with no runtime cycle detection.
package graph

import (
	"context"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// NodeFunc is the unit of work attached to a node. It mutates the state in
// place and returns an error only for failures that should abort the run.
type NodeFunc func(ctx context.Context, s *domain.State) error

// DecisionFunc inspects the state a node just updated and returns the label
// of the edge to follow.
type DecisionFunc func(s *domain.State) string

// RoutingError reports a conditional edge whose decision function produced a
// label with no registered successor. It indicates a registration bug and is
// fatal to the run.
type RoutingError struct {
	Node  string
	Label string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("graph: node %q produced unroutable label %q", e.Node, e.Label)
}

type conditionalEdge struct {
	decide  DecisionFunc
	targets map[string]string
}

// Builder accumulates nodes and edges before compilation.
type Builder struct {
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]*conditionalEdge
	entry       string
	hooks       domain.LifecycleHooks
	err         error
}

// NewBuilder returns an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:       make(map[string]NodeFunc),
		edges:       make(map[string]string),
		conditional: make(map[string]*conditionalEdge),
	}
}

// AddNode registers a named node. Re-registering a name is a build error.
func (b *Builder) AddNode(name string, fn NodeFunc) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" || fn == nil {
		b.err = fmt.Errorf("graph: node requires a name and a function")
		return b
	}
	if _, dup := b.nodes[name]; dup {
		b.err = fmt.Errorf("graph: duplicate node %q", name)
		return b
	}
	b.nodes[name] = fn
	return b
}

// SetEntry designates the node the start edge points at.
func (b *Builder) SetEntry(name string) *Builder {
	if b.err == nil {
		b.entry = name
	}
	return b
}

// Hooks registers lifecycle hooks fired around every node invocation during
// Run. Nil callbacks are skipped.
func (b *Builder) Hooks(h domain.LifecycleHooks) *Builder {
	if b.err == nil {
		b.hooks = h
	}
	return b
}

// AddEdge registers an unconditional transition from one node to another.
func (b *Builder) AddEdge(from, to string) *Builder {
	if b.err != nil {
		return b
	}
	if _, dup := b.edges[from]; dup {
		b.err = fmt.Errorf("graph: node %q already has an outgoing edge", from)
		return b
	}
	if _, cond := b.conditional[from]; cond {
		b.err = fmt.Errorf("graph: node %q already has a conditional edge", from)
		return b
	}
	b.edges[from] = to
	return b
}

// AddConditionalEdges registers a transition whose successor is computed by
// decide against the state the node just updated, looked up in targets.
func (b *Builder) AddConditionalEdges(from string, decide DecisionFunc, targets map[string]string) *Builder {
	if b.err != nil {
		return b
	}
	if decide == nil || len(targets) == 0 {
		b.err = fmt.Errorf("graph: conditional edge from %q requires a decision function and targets", from)
		return b
	}
	if _, dup := b.edges[from]; dup {
		b.err = fmt.Errorf("graph: node %q already has an outgoing edge", from)
		return b
	}
	if _, dup := b.conditional[from]; dup {
		b.err = fmt.Errorf("graph: node %q already has a conditional edge", from)
		return b
	}
	b.conditional[from] = &conditionalEdge{decide: decide, targets: targets}
	return b
}

// Compile validates the topology and freezes it into an executable Graph.
// Validation rejects unknown endpoints and any edge set containing a cycle,
// so Run never needs to guard against revisiting a node.
func (b *Builder) Compile() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.entry == "" {
		return nil, fmt.Errorf("graph: entry node not set")
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("graph: entry node %q not registered", b.entry)
	}
	for from, to := range b.edges {
		if err := b.checkEndpoint(from, to); err != nil {
			return nil, err
		}
	}
	for from, edge := range b.conditional {
		for label, to := range edge.targets {
			if err := b.checkEndpoint(from, to); err != nil {
				return nil, fmt.Errorf("%w (label %q)", err, label)
			}
		}
	}
	if err := b.checkAcyclic(); err != nil {
		return nil, err
	}
	return &Graph{
		nodes:       b.nodes,
		edges:       b.edges,
		conditional: b.conditional,
		entry:       b.entry,
		hooks:       b.hooks,
	}, nil
}

func (b *Builder) checkEndpoint(from, to string) error {
	if _, ok := b.nodes[from]; !ok {
		return fmt.Errorf("graph: edge source %q not registered", from)
	}
	if _, ok := b.nodes[to]; !ok {
		return fmt.Errorf("graph: edge target %q not registered", to)
	}
	return nil
}

// checkAcyclic walks every possible successor relation depth-first and
// rejects the first back-edge it finds.
func (b *Builder) checkAcyclic() error {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	marks := make(map[string]int, len(b.nodes))

	var visit func(name string) error
	visit = func(name string) error {
		switch marks[name] {
		case inStack:
			return fmt.Errorf("graph: cycle detected through node %q", name)
		case done:
			return nil
		}
		marks[name] = inStack
		for _, succ := range b.successors(name) {
			if err := visit(succ); err != nil {
				return err
			}
		}
		marks[name] = done
		return nil
	}

	for name := range b.nodes {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) successors(name string) []string {
	if to, ok := b.edges[name]; ok {
		return []string{to}
	}
	if edge, ok := b.conditional[name]; ok {
		out := make([]string, 0, len(edge.targets))
		for _, to := range edge.targets {
			out = append(out, to)
		}
		return out
	}
	return nil
}

// Graph is a compiled, immutable node table. It is safe for reuse across
// sequential runs; each run owns its own State.
type Graph struct {
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]*conditionalEdge
	entry       string
	hooks       domain.LifecycleHooks
}

// Entry returns the entry node name.
func (g *Graph) Entry() string { return g.entry }

// Nodes returns the registered node names (unordered).
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		out = append(out, name)
	}
	return out
}

// Run walks the graph from the entry node, invoking each node with the state
// and following its outgoing edge until it reaches a node with none. Node
// enter and leave hooks fire around every invocation, leave included when
// the node fails. The context is checked between nodes; a node with an
// unroutable conditional label fails with *RoutingError.
func (g *Graph) Run(ctx context.Context, s *domain.State) error {
	current := g.entry
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.hooks.EmitNodeEnter(ctx, current)
		err := g.nodes[current](ctx, s)
		g.hooks.EmitNodeLeave(ctx, current)
		if err != nil {
			return fmt.Errorf("node %q: %w", current, err)
		}

		if edge, ok := g.conditional[current]; ok {
			label := edge.decide(s)
			next, ok := edge.targets[label]
			if !ok {
				return &RoutingError{Node: current, Label: label}
			}
			current = next
			continue
		}
		next, ok := g.edges[current]
		if !ok {
			return nil
		}
		current = next
	}
}
