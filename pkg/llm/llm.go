// Package llm provides language model transports: a Gemini REST client, a
// pacing wrapper that enforces a minimum interval between calls, and a Func
// adapter for scripted models in tests.
package llm

import (
	"context"
	"fmt"
)

// CallError reports a failed outbound model call (transport, auth, quota).
// It is fatal to the query that issued it: no further progress is possible
// without the model.
type CallError struct {
	Provider string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("model call (%s): %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Func adapts a plain function to ports.ModelClient. Used for scripted
// models in tests and examples.
type Func func(ctx context.Context, prompt string) (string, error)

// Invoke implements ports.ModelClient.
func (f Func) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
