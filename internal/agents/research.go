package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/espalier/internal/prompts"
	"github.com/aretw0/espalier/internal/react"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/tools"
)

// PlanStep is one entry of a research plan.
type PlanStep struct {
	Step   int    `mapstructure:"step"`
	Action string `mapstructure:"action"`
	Tool   string `mapstructure:"tool"`
	Query  string `mapstructure:"query"`
}

// finding is the outcome of executing one plan step.
type finding struct {
	step    PlanStep
	output  string
	success bool
}

// Research handles multi-step queries: one planning call, sequential step
// execution through the shared dispatcher, an adequacy check between steps,
// and one synthesis call over the collected findings.
type Research struct {
	model         ports.ModelClient
	registry      *tools.Registry
	dispatcher    *react.Dispatcher
	hooks         domain.LifecycleHooks
	maxIterations int
	logger        *slog.Logger
}

// NewResearch builds the research path node.
func NewResearch(model ports.ModelClient, registry *tools.Registry, hooks domain.LifecycleHooks, maxIterations int, logger *slog.Logger) *Research {
	if maxIterations <= 0 {
		maxIterations = 5
	}
	return &Research{
		model:         model,
		registry:      registry,
		dispatcher:    react.NewDispatcher(registry, hooks),
		hooks:         hooks,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Answer is the research path's node function.
func (r *Research) Answer(ctx context.Context, st *domain.State) error {
	st.AppendMessage(domain.RoleUser, st.Query)

	plan, err := r.plan(ctx, st.Query, st.History)
	if err != nil {
		return err
	}
	r.logger.Debug("research plan created", "steps", len(plan))

	var findings []finding
	for i, step := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 && !r.shouldContinue(ctx, st.Query, plan[:i], findings, len(plan)-i) {
			r.logger.Debug("research concluded early", "completed", i, "planned", len(plan))
			break
		}
		if i >= r.maxIterations {
			break
		}

		output, failed := r.dispatcher.Invoke(ctx, react.NormalizeToolName(step.Tool), step.Query)
		findings = append(findings, finding{step: step, output: output, success: !failed})
		st.Steps = append(st.Steps, domain.ToolStep{
			Tool:   react.NormalizeToolName(step.Tool),
			Input:  step.Query,
			Output: output,
		})
	}

	answer, err := r.synthesize(ctx, st.Query, findings, st.History)
	if err != nil {
		return err
	}
	st.Response = answer
	st.AppendMessage(domain.RoleAssistant, answer)
	return nil
}

// plan makes the single planning call and decodes the step list. A failed
// or empty plan degrades to one web search over the raw query.
func (r *Research) plan(ctx context.Context, query string, history []domain.InteractionRecord) ([]PlanStep, error) {
	prompt := prompts.Planning(query, renderContext(history, synthesisWindow), r.registry.Catalog())

	start := time.Now()
	raw, err := r.model.Invoke(ctx, prompt)
	r.hooks.EmitModelCall(ctx, time.Since(start), err != nil)
	if err != nil {
		return nil, fmt.Errorf("planning call: %w", err)
	}

	steps := decodePlan(raw, query)
	if len(steps) == 0 {
		steps = []PlanStep{{
			Step:   1,
			Action: "Search for general information",
			Tool:   "web_search",
			Query:  query,
		}}
	}
	return steps, nil
}

// decodePlan parses the planning reply. Model output is loosely typed, so
// the step list goes through a weakly typed decode. Steps without a tool
// are dropped; steps without a query fall back to the original query.
func decodePlan(raw, query string) []PlanStep {
	var reply struct {
		Plan []map[string]any `json:"plan"`
	}
	if err := json.Unmarshal([]byte(StripJSONFences(raw)), &reply); err != nil {
		return nil
	}

	var steps []PlanStep
	for _, item := range reply.Plan {
		var step PlanStep
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &step,
			WeaklyTypedInput: true,
		})
		if err != nil || dec.Decode(item) != nil {
			continue
		}
		if step.Tool == "" {
			continue
		}
		if step.Query == "" {
			step.Query = query
		}
		steps = append(steps, step)
	}
	return steps
}

// shouldContinue decides between executing the remaining plan and cutting
// over to synthesis. With fewer than two successful findings it always
// continues; beyond that it asks the model and scores the free-text reply.
func (r *Research) shouldContinue(ctx context.Context, query string, completed []PlanStep, findings []finding, remaining int) bool {
	successful := 0
	for _, f := range findings {
		if f.success {
			successful++
		}
	}
	if successful < 2 {
		return true
	}

	var done, summary strings.Builder
	for _, step := range completed {
		fmt.Fprintf(&done, "- %s using %s\n", step.Action, step.Tool)
	}
	for _, f := range findings {
		if f.success {
			fmt.Fprintf(&summary, "- %s: Found relevant information\n", f.step.Tool)
		}
	}

	prompt := prompts.Continue(query, done.String(), summary.String(), remaining)
	start := time.Now()
	raw, err := r.model.Invoke(ctx, prompt)
	r.hooks.EmitModelCall(ctx, time.Since(start), err != nil)
	if err != nil {
		// An adequacy-check failure is not fatal; keep executing the plan.
		return true
	}

	reply := strings.ToLower(raw)
	continueScore := keywordScore(reply, "continue", "proceed", "more research", "additional")
	stopScore := keywordScore(reply, "sufficient", "enough", "synthesize", "conclude")
	return continueScore > stopScore
}

func keywordScore(text string, keywords ...string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	return score
}

// synthesize makes the single synthesis call over successful findings.
func (r *Research) synthesize(ctx context.Context, query string, findings []finding, history []domain.InteractionRecord) (string, error) {
	var text strings.Builder
	n := 0
	for _, f := range findings {
		if !f.success {
			continue
		}
		n++
		fmt.Fprintf(&text, "Step %d - %s:\n%s\n\n", n, f.step.Tool, f.output)
	}
	if text.Len() == 0 {
		text.WriteString("No usable findings were collected.")
	}

	prompt := prompts.Synthesis(query, renderContext(history, synthesisWindow), text.String())
	start := time.Now()
	answer, err := r.model.Invoke(ctx, prompt)
	r.hooks.EmitModelCall(ctx, time.Since(start), err != nil)
	if err != nil {
		return "", fmt.Errorf("synthesis call: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
