package agents

import (
	"context"
	"log/slog"

	"github.com/aretw0/espalier/internal/react"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/tools"
)

// General answers direct questions with a bounded tool-use loop over the
// quick tools (Python REPL and web search by default).
type General struct {
	loop   *react.Loop
	logger *slog.Logger
}

// NewGeneral builds the general path node.
func NewGeneral(model ports.ModelClient, registry *tools.Registry, hooks domain.LifecycleHooks, maxIterations int, logger *slog.Logger) *General {
	return &General{
		loop:   react.NewLoop(model, registry, hooks, maxIterations),
		logger: logger,
	}
}

// Answer is the general path's node function.
func (g *General) Answer(ctx context.Context, st *domain.State) error {
	st.AppendMessage(domain.RoleUser, st.Query)

	answer, steps, err := g.loop.Run(ctx, st.Query, renderContext(st.History, generalWindow))
	if err != nil {
		return err
	}

	st.Response = answer
	st.Steps = append(st.Steps, steps...)
	st.AppendMessage(domain.RoleAssistant, answer)
	g.logger.Debug("general path done", "steps", len(steps))
	return nil
}
