package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter     EventType = "node_enter"
	EventNodeLeave     EventType = "node_leave"
	EventRouteDecision EventType = "route_decision"
	EventToolCall      EventType = "tool_call"
	EventToolReturn    EventType = "tool_return"
	EventModelCall     EventType = "model_call"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents entry or exit from a graph node.
type NodeEvent struct {
	EventBase
	Node string `json:"node"`
}

// RouteEvent represents the routing policy's decision for a query.
type RouteEvent struct {
	EventBase
	Route     Route  `json:"route"`
	Rationale string `json:"rationale"`
}

// ToolEvent represents a tool invocation or its observation.
type ToolEvent struct {
	EventBase
	Tool    string `json:"tool"`
	Input   string `json:"input,omitempty"`
	Output  string `json:"output,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
}

// ModelEvent represents one outbound model call.
type ModelEvent struct {
	EventBase
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for observability. Nil fields are skipped.
type LifecycleHooks struct {
	OnNodeEnter     func(context.Context, *NodeEvent)
	OnNodeLeave     func(context.Context, *NodeEvent)
	OnRouteDecision func(context.Context, *RouteEvent)
	OnToolCall      func(context.Context, *ToolEvent)
	OnToolReturn    func(context.Context, *ToolEvent)
	OnModelCall     func(context.Context, *ModelEvent)
}

// MergeHooks combines hook sets so every registered callback fires. Later
// sets run after earlier ones.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, hs := range sets {
		hs := hs
		if hs.OnNodeEnter != nil {
			prev := merged.OnNodeEnter
			merged.OnNodeEnter = func(ctx context.Context, e *NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hs.OnNodeEnter(ctx, e)
			}
		}
		if hs.OnNodeLeave != nil {
			prev := merged.OnNodeLeave
			merged.OnNodeLeave = func(ctx context.Context, e *NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hs.OnNodeLeave(ctx, e)
			}
		}
		if hs.OnRouteDecision != nil {
			prev := merged.OnRouteDecision
			merged.OnRouteDecision = func(ctx context.Context, e *RouteEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hs.OnRouteDecision(ctx, e)
			}
		}
		if hs.OnToolCall != nil {
			prev := merged.OnToolCall
			merged.OnToolCall = func(ctx context.Context, e *ToolEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hs.OnToolCall(ctx, e)
			}
		}
		if hs.OnToolReturn != nil {
			prev := merged.OnToolReturn
			merged.OnToolReturn = func(ctx context.Context, e *ToolEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hs.OnToolReturn(ctx, e)
			}
		}
		if hs.OnModelCall != nil {
			prev := merged.OnModelCall
			merged.OnModelCall = func(ctx context.Context, e *ModelEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hs.OnModelCall(ctx, e)
			}
		}
	}
	return merged
}

// EmitNodeEnter fires OnNodeEnter if registered.
func (h LifecycleHooks) EmitNodeEnter(ctx context.Context, node string) {
	if h.OnNodeEnter != nil {
		h.OnNodeEnter(ctx, &NodeEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventNodeEnter},
			Node:      node,
		})
	}
}

// EmitNodeLeave fires OnNodeLeave if registered.
func (h LifecycleHooks) EmitNodeLeave(ctx context.Context, node string) {
	if h.OnNodeLeave != nil {
		h.OnNodeLeave(ctx, &NodeEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventNodeLeave},
			Node:      node,
		})
	}
}

// EmitRouteDecision fires OnRouteDecision if registered.
func (h LifecycleHooks) EmitRouteDecision(ctx context.Context, route Route, rationale string) {
	if h.OnRouteDecision != nil {
		h.OnRouteDecision(ctx, &RouteEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventRouteDecision},
			Route:     route,
			Rationale: rationale,
		})
	}
}

// EmitToolCall fires OnToolCall if registered.
func (h LifecycleHooks) EmitToolCall(ctx context.Context, tool, input string) {
	if h.OnToolCall != nil {
		h.OnToolCall(ctx, &ToolEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventToolCall},
			Tool:      tool,
			Input:     input,
		})
	}
}

// EmitToolReturn fires OnToolReturn if registered.
func (h LifecycleHooks) EmitToolReturn(ctx context.Context, tool, output string, isError bool) {
	if h.OnToolReturn != nil {
		h.OnToolReturn(ctx, &ToolEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventToolReturn},
			Tool:      tool,
			Output:    output,
			IsError:   isError,
		})
	}
}

// EmitModelCall fires OnModelCall if registered.
func (h LifecycleHooks) EmitModelCall(ctx context.Context, d time.Duration, isError bool) {
	if h.OnModelCall != nil {
		h.OnModelCall(ctx, &ModelEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventModelCall},
			Duration:  d,
			IsError:   isError,
		})
	}
}
