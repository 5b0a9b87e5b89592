package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/aretw0/espalier/pkg/domain"
)

func TestCollectorHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector()
	c.MustRegister(reg)

	ctx := context.Background()
	hooks := c.Hooks()
	hooks.EmitRouteDecision(ctx, domain.RouteResearch, "needs sources")
	hooks.EmitRouteDecision(ctx, domain.RouteGeneral, "")
	hooks.EmitRouteDecision(ctx, domain.RouteGeneral, "")
	hooks.EmitToolReturn(ctx, "web_search", "ok", false)
	hooks.EmitToolReturn(ctx, "web_search", "boom", true)
	hooks.EmitModelCall(ctx, 200*time.Millisecond, false)

	if got := testutil.ToFloat64(c.queriesTotal.WithLabelValues("research")); got != 1 {
		t.Errorf("research queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.queriesTotal.WithLabelValues("general")); got != 2 {
		t.Errorf("general queries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.toolInvocations.WithLabelValues("web_search", "ok")); got != 1 {
		t.Errorf("ok invocations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.toolInvocations.WithLabelValues("web_search", "error")); got != 1 {
		t.Errorf("error invocations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.modelCallsTotal); got != 1 {
		t.Errorf("model calls = %v, want 1", got)
	}
}

func TestRegisterConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector()
	if err := c.Register(reg); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := NewCollector().Register(reg); err == nil {
		t.Fatal("second Register with same names did not error")
	}
}
