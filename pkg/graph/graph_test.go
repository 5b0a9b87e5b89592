package graph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/graph"
)

func appendNode(tag string) graph.NodeFunc {
	return func(_ context.Context, s *domain.State) error {
		s.Response += tag
		return nil
	}
}

func TestGraph_LinearRun(t *testing.T) {
	g, err := graph.NewBuilder().
		AddNode("a", appendNode("a")).
		AddNode("b", appendNode("b")).
		AddNode("c", appendNode("c")).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", "c").
		Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	s := domain.NewState("q", nil)
	if err := g.Run(context.Background(), s); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s.Response != "abc" {
		t.Errorf("Expected visit order 'abc', got %q", s.Response)
	}
}

func TestGraph_ConditionalEdge(t *testing.T) {
	build := func() *graph.Builder {
		return graph.NewBuilder().
			AddNode("router", func(_ context.Context, s *domain.State) error {
				// The node writes the field the edge reads back.
				s.Route = domain.Route(s.Query)
				return nil
			}).
			AddNode("general", appendNode("general")).
			AddNode("research", appendNode("research")).
			SetEntry("router").
			AddConditionalEdges("router", func(s *domain.State) string {
				return string(s.Route)
			}, map[string]string{
				"general":  "general",
				"research": "research",
			})
	}

	t.Run("Known Label", func(t *testing.T) {
		g, err := build().Compile()
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		s := domain.NewState("research", nil)
		if err := g.Run(context.Background(), s); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if s.Response != "research" {
			t.Errorf("Expected research path, got %q", s.Response)
		}
	})

	t.Run("Unroutable Label", func(t *testing.T) {
		g, err := build().Compile()
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		s := domain.NewState("bogus", nil)
		err = g.Run(context.Background(), s)

		var routingErr *graph.RoutingError
		if !errors.As(err, &routingErr) {
			t.Fatalf("Expected *RoutingError, got %v", err)
		}
		if routingErr.Node != "router" || routingErr.Label != "bogus" {
			t.Errorf("Unexpected error detail: %+v", routingErr)
		}
	})
}

func TestGraph_NodeHooks(t *testing.T) {
	var events []string
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			events = append(events, "enter:"+e.Node)
		},
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			events = append(events, "leave:"+e.Node)
		},
	}

	t.Run("Fires Around Every Node", func(t *testing.T) {
		events = nil
		g, err := graph.NewBuilder().
			AddNode("a", appendNode("a")).
			AddNode("b", appendNode("b")).
			SetEntry("a").
			Hooks(hooks).
			AddEdge("a", "b").
			Compile()
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if err := g.Run(context.Background(), domain.NewState("q", nil)); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		want := []string{"enter:a", "leave:a", "enter:b", "leave:b"}
		if len(events) != len(want) {
			t.Fatalf("Expected %d events, got %d: %v", len(want), len(events), events)
		}
		for i, e := range want {
			if events[i] != e {
				t.Errorf("Event %d: expected %q, got %q", i, e, events[i])
			}
		}
	})

	t.Run("Leave Fires On Node Error", func(t *testing.T) {
		events = nil
		g, err := graph.NewBuilder().
			AddNode("a", func(context.Context, *domain.State) error {
				return errors.New("boom")
			}).
			SetEntry("a").
			Hooks(hooks).
			Compile()
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if err := g.Run(context.Background(), domain.NewState("q", nil)); err == nil {
			t.Fatal("Expected node error")
		}
		if len(events) != 2 || events[0] != "enter:a" || events[1] != "leave:a" {
			t.Errorf("Expected enter and leave around the failing node, got %v", events)
		}
	})
}

func TestBuilder_RejectsCycles(t *testing.T) {
	t.Run("Direct Cycle", func(t *testing.T) {
		_, err := graph.NewBuilder().
			AddNode("a", appendNode("a")).
			AddNode("b", appendNode("b")).
			SetEntry("a").
			AddEdge("a", "b").
			AddEdge("b", "a").
			Compile()
		if err == nil {
			t.Fatal("Expected cycle rejection at compile time")
		}
	})

	t.Run("Conditional Cycle", func(t *testing.T) {
		_, err := graph.NewBuilder().
			AddNode("a", appendNode("a")).
			AddNode("b", appendNode("b")).
			SetEntry("a").
			AddConditionalEdges("a", func(*domain.State) string { return "loop" },
				map[string]string{"loop": "b", "back": "a"}).
			Compile()
		if err == nil {
			t.Fatal("Expected self-target rejection at compile time")
		}
	})

	t.Run("Self Loop", func(t *testing.T) {
		_, err := graph.NewBuilder().
			AddNode("a", appendNode("a")).
			SetEntry("a").
			AddEdge("a", "a").
			Compile()
		if err == nil {
			t.Fatal("Expected self-loop rejection at compile time")
		}
	})
}

func TestBuilder_Validation(t *testing.T) {
	t.Run("Missing Entry", func(t *testing.T) {
		_, err := graph.NewBuilder().AddNode("a", appendNode("a")).Compile()
		if err == nil {
			t.Fatal("Expected error for unset entry")
		}
	})

	t.Run("Unknown Edge Target", func(t *testing.T) {
		_, err := graph.NewBuilder().
			AddNode("a", appendNode("a")).
			SetEntry("a").
			AddEdge("a", "ghost").
			Compile()
		if err == nil {
			t.Fatal("Expected error for unknown target")
		}
	})

	t.Run("Duplicate Outgoing Edge", func(t *testing.T) {
		_, err := graph.NewBuilder().
			AddNode("a", appendNode("a")).
			AddNode("b", appendNode("b")).
			AddNode("c", appendNode("c")).
			SetEntry("a").
			AddEdge("a", "b").
			AddEdge("a", "c").
			Compile()
		if err == nil {
			t.Fatal("Expected error for second outgoing edge")
		}
	})

	t.Run("Duplicate Node", func(t *testing.T) {
		_, err := graph.NewBuilder().
			AddNode("a", appendNode("a")).
			AddNode("a", appendNode("a")).
			SetEntry("a").
			Compile()
		if err == nil {
			t.Fatal("Expected error for duplicate node name")
		}
	})
}

func TestGraph_NodeErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	g, err := graph.NewBuilder().
		AddNode("a", func(context.Context, *domain.State) error { return boom }).
		AddNode("b", appendNode("b")).
		SetEntry("a").
		AddEdge("a", "b").
		Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	s := domain.NewState("q", nil)
	if err := g.Run(context.Background(), s); !errors.Is(err, boom) {
		t.Fatalf("Expected node error to propagate, got %v", err)
	}
	if s.Response != "" {
		t.Errorf("Node after failure must not run, got %q", s.Response)
	}
}

func TestGraph_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := graph.NewBuilder().
		AddNode("a", appendNode("a")).
		SetEntry("a").
		Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if err := g.Run(ctx, domain.NewState("q", nil)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
