package react

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/tools"
)

// Dispatcher resolves tool names against a fixed registry and turns every
// outcome, including failure, into observation text. It never returns an
// error: the loop folds observations back into the scratchpad and lets the
// model self-correct on the next round.
type Dispatcher struct {
	registry *tools.Registry
	hooks    domain.LifecycleHooks
}

// NewDispatcher wraps a registry, shared read-only across rounds.
func NewDispatcher(registry *tools.Registry, hooks domain.LifecycleHooks) *Dispatcher {
	return &Dispatcher{registry: registry, hooks: hooks}
}

// Invoke runs the named tool and returns its observation text. failed is
// true when the observation describes an unavailable tool or a capability
// failure rather than a result.
func (d *Dispatcher) Invoke(ctx context.Context, name, input string) (observation string, failed bool) {
	tool, ok := d.registry.Lookup(name)
	if !ok {
		d.hooks.EmitToolCall(ctx, name, input)
		obs := fmt.Sprintf("Tool %q is not available. Available tools: %s.",
			name, strings.Join(d.registry.Names(), ", "))
		d.hooks.EmitToolReturn(ctx, name, obs, true)
		return obs, true
	}

	d.hooks.EmitToolCall(ctx, name, input)
	out, err := d.runSafely(ctx, tool, input)
	if err != nil {
		obs := fmt.Sprintf("Error using %s: %v", name, err)
		d.hooks.EmitToolReturn(ctx, name, obs, true)
		return obs, true
	}
	d.hooks.EmitToolReturn(ctx, name, out, false)
	return out, false
}

// runSafely converts a panicking tool into an error so the boundary holds.
func (d *Dispatcher) runSafely(ctx context.Context, tool ports.Tool, input string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return tool.Run(ctx, input)
}
