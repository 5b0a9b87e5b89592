package react

import (
	"context"
	"time"

	"github.com/aretw0/espalier/internal/prompts"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/tools"
)

// ExhaustedAnswer is returned when the iteration bound is reached without a
// final answer. Exhaustion is a recoverable termination, not an error.
const ExhaustedAnswer = "I was unable to complete the reasoning within the allotted steps. " +
	"Based on the work so far, I could not reach a confident final answer."

// Loop runs the bounded Thought/Action/Observation cycle against one model
// and one tool registry.
type Loop struct {
	model         ports.ModelClient
	registry      *tools.Registry
	dispatcher    *Dispatcher
	hooks         domain.LifecycleHooks
	maxIterations int
}

// NewLoop builds a loop instance. The registry mapping is resolved once here
// and shared read-only across every Run call.
func NewLoop(model ports.ModelClient, registry *tools.Registry, hooks domain.LifecycleHooks, maxIterations int) *Loop {
	if maxIterations <= 0 {
		maxIterations = 10
	}
	return &Loop{
		model:         model,
		registry:      registry,
		dispatcher:    NewDispatcher(registry, hooks),
		hooks:         hooks,
		maxIterations: maxIterations,
	}
}

// Run drives reasoning rounds until the model emits a final answer or the
// iteration bound is hit. Every round, including a malformed one, counts
// toward the bound. Only model transport failures and context cancellation
// surface as errors; exhaustion returns a best-effort answer with nil error.
func (l *Loop) Run(ctx context.Context, query, contextText string) (string, []domain.ToolStep, error) {
	var (
		pad   Scratchpad
		steps []domain.ToolStep
	)
	catalog := l.registry.Catalog()
	names := prompts.JoinNames(l.registry.Names())

	for round := 0; round < l.maxIterations; round++ {
		if err := ctx.Err(); err != nil {
			return "", steps, err
		}

		prompt := prompts.React(query, catalog, names, contextText, pad.Render())

		start := time.Now()
		raw, err := l.model.Invoke(ctx, prompt)
		l.hooks.EmitModelCall(ctx, time.Since(start), err != nil)
		if err != nil {
			return "", steps, err
		}

		decision := Parse(raw)
		switch decision.Kind {
		case domain.DecisionFinalAnswer:
			return decision.Answer, steps, nil

		case domain.DecisionAction:
			observation, _ := l.dispatcher.Invoke(ctx, decision.Tool, decision.Input)
			steps = append(steps, domain.ToolStep{
				Tool:   decision.Tool,
				Input:  decision.Input,
				Output: observation,
			})
			pad.Append(Entry{
				Thought:     decision.Thought,
				Action:      decision.Tool,
				ActionInput: decision.Input,
				Observation: observation,
			})

		case domain.DecisionReasoning:
			pad.Append(Entry{Thought: decision.Thought})

		case domain.DecisionMalformed:
			pad.Append(Entry{Thought: decision.Raw})
		}
	}

	return ExhaustedAnswer, steps, nil
}
