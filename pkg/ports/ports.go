// Package ports defines the driven-side interfaces the engine depends on.
// Implementations live in pkg/llm and pkg/tools; tests supply their own.
package ports

import "context"

// ModelClient is implemented by language model transports. Invoke is
// synchronous: one prompt in, one response out. Transport, auth and quota
// failures surface as errors (typically *llm.CallError), never as text.
type ModelClient interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Tool is an external capability the reasoning loop can dispatch to.
// Run is synchronous, single string in/out. Implementations return errors
// freely; the dispatcher converts them to textual observations and never
// lets them cross the loop boundary.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, input string) (string, error)
}
