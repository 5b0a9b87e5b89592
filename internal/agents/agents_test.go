package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/tools"
)

// scriptedModel replays canned outputs, recording prompts.
type scriptedModel struct {
	outputs []string
	prompts []string
	err     error
}

func (m *scriptedModel) Invoke(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	i := len(m.prompts) - 1
	if i >= len(m.outputs) {
		i = len(m.outputs) - 1
	}
	return m.outputs[i], nil
}

type echoTool struct{ name string }

func (e echoTool) Name() string        { return e.name }
func (e echoTool) Description() string { return "echoes its input" }
func (e echoTool) Run(_ context.Context, input string) (string, error) {
	return "echo: " + input, nil
}

func TestRouterDecide(t *testing.T) {
	cases := []struct {
		name      string
		reply     string
		wantRoute domain.Route
		wantRaw   bool
	}{
		{"clean json", `{"route": "research", "reasoning": "needs sources"}`, domain.RouteResearch, false},
		{"fenced json", "```json\n{\"route\": \"general\", \"reasoning\": \"simple math\"}\n```", domain.RouteGeneral, false},
		{"unknown label falls back", `{"route": "escalate", "reasoning": "?"}`, domain.RouteGeneral, true},
		{"non-json falls back", "I think general is best here", domain.RouteGeneral, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := &scriptedModel{outputs: []string{tc.reply}}
			r := NewRouter(model, domain.LifecycleHooks{}, logging.NewNop())

			st := domain.NewState("q", nil)
			if err := r.Decide(context.Background(), st); err != nil {
				t.Fatalf("Decide: %v", err)
			}
			if st.Route != tc.wantRoute {
				t.Errorf("route = %q, want %q", st.Route, tc.wantRoute)
			}
			if tc.wantRaw && !strings.Contains(st.Rationale, strings.TrimSpace(tc.reply)) {
				t.Errorf("rationale = %q, want the raw reply preserved", st.Rationale)
			}
		})
	}
}

func TestRouterModelErrorIsFatal(t *testing.T) {
	model := &scriptedModel{err: errors.New("transport down")}
	r := NewRouter(model, domain.LifecycleHooks{}, logging.NewNop())

	st := domain.NewState("q", nil)
	if err := r.Decide(context.Background(), st); err == nil {
		t.Fatal("routing model failure must abort the query")
	}
}

func TestRouterUsesRecentHistory(t *testing.T) {
	history := []domain.InteractionRecord{
		{Query: "oldest", Response: "r0"},
		{Query: "q1", Response: "r1"},
		{Query: "q2", Response: strings.Repeat("x", 150)},
		{Query: "q3", Response: "r3"},
	}
	model := &scriptedModel{outputs: []string{`{"route": "general", "reasoning": "ok"}`}}
	r := NewRouter(model, domain.LifecycleHooks{}, logging.NewNop())

	st := domain.NewState("current", history)
	if err := r.Decide(context.Background(), st); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	prompt := model.prompts[0]
	if strings.Contains(prompt, "oldest") {
		t.Error("prompt includes history beyond the routing window")
	}
	if !strings.Contains(prompt, "q1") || !strings.Contains(prompt, "q3") {
		t.Error("prompt missing recent history entries")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 100)+"...") {
		t.Error("long response not truncated in context block")
	}
	if strings.Contains(prompt, strings.Repeat("x", 101)) {
		t.Error("truncation cap exceeded")
	}
	// Chronological order.
	if strings.Index(prompt, "q1") > strings.Index(prompt, "q3") {
		t.Error("history not chronological")
	}
}

func TestGeneralAnswer(t *testing.T) {
	model := &scriptedModel{outputs: []string{
		"Thought: compute\nAction: echo\nAction Input: 2+2",
		"Final Answer: four",
	}}
	g := NewGeneral(model, tools.NewRegistry(echoTool{name: "echo"}), domain.LifecycleHooks{}, 10, logging.NewNop())

	st := domain.NewState("what is 2+2?", nil)
	if err := g.Answer(context.Background(), st); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if st.Response != "four" {
		t.Errorf("response = %q", st.Response)
	}
	if len(st.Steps) != 1 || st.Steps[0].Tool != "echo" {
		t.Errorf("steps = %+v", st.Steps)
	}
}

func TestResearchAnswer(t *testing.T) {
	model := &scriptedModel{outputs: []string{
		`{"plan": [
			{"step": 1, "action": "look up background", "tool": "echo", "query": "background info"},
			{"step": "2", "action": "find papers", "tool": "echo", "query": "recent papers"}
		]}`,
		"Synthesized: comprehensive answer from both findings.",
	}}
	r := NewResearch(model, tools.NewRegistry(echoTool{name: "echo"}), domain.LifecycleHooks{}, 5, logging.NewNop())

	st := domain.NewState("deep question", nil)
	if err := r.Answer(context.Background(), st); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !strings.HasPrefix(st.Response, "Synthesized:") {
		t.Errorf("response = %q", st.Response)
	}
	// Step one executes; the adequacy check has only one successful finding
	// so step two executes without a model call; then synthesis runs.
	if len(st.Steps) != 2 {
		t.Fatalf("steps = %+v, want both plan steps executed", st.Steps)
	}
	if st.Steps[0].Input != "background info" || st.Steps[1].Input != "recent papers" {
		t.Errorf("steps = %+v", st.Steps)
	}
	if len(model.prompts) != 2 {
		t.Errorf("model called %d times, want plan + synthesis", len(model.prompts))
	}
	if !strings.Contains(model.prompts[1], "echo: background info") {
		t.Error("synthesis prompt missing findings")
	}
}

func TestResearchPlanningPromptContext(t *testing.T) {
	model := &scriptedModel{outputs: []string{
		`{"plan": [{"step": 1, "action": "search", "tool": "echo", "query": "follow-up"}]}`,
		"Synthesized answer.",
	}}
	r := NewResearch(model, tools.NewRegistry(echoTool{name: "echo"}), domain.LifecycleHooks{}, 5, logging.NewNop())

	history := []domain.InteractionRecord{
		{Query: "earlier question", Response: "earlier answer"},
	}
	st := domain.NewState("tell me more", history)
	if err := r.Answer(context.Background(), st); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	plan := model.prompts[0]
	// History sits in its own labeled section; the query line carries the
	// query alone.
	if !strings.Contains(plan, "Recent conversation:\nUser: earlier question") {
		t.Errorf("planning prompt missing labeled history section:\n%s", plan)
	}
	if !strings.Contains(plan, "User Query: tell me more") {
		t.Errorf("planning prompt query line corrupted:\n%s", plan)
	}
}

func TestResearchPlanFallback(t *testing.T) {
	model := &scriptedModel{outputs: []string{
		"not json at all",
		"Final synthesis over the single search.",
	}}
	r := NewResearch(model, tools.NewRegistry(echoTool{name: "web_search"}), domain.LifecycleHooks{}, 5, logging.NewNop())

	st := domain.NewState("some question", nil)
	if err := r.Answer(context.Background(), st); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(st.Steps) != 1 || st.Steps[0].Tool != "web_search" || st.Steps[0].Input != "some question" {
		t.Errorf("steps = %+v, want single web_search over the raw query", st.Steps)
	}
}

func TestResearchAdequacyCheck(t *testing.T) {
	model := &scriptedModel{outputs: []string{
		`{"plan": [
			{"step": 1, "action": "a", "tool": "echo", "query": "one"},
			{"step": 2, "action": "b", "tool": "echo", "query": "two"},
			{"step": 3, "action": "c", "tool": "echo", "query": "three"}
		]}`,
		"The findings are sufficient; conclude now.",
		"Synthesis.",
	}}
	r := NewResearch(model, tools.NewRegistry(echoTool{name: "echo"}), domain.LifecycleHooks{}, 5, logging.NewNop())

	st := domain.NewState("q", nil)
	if err := r.Answer(context.Background(), st); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	// Steps one and two run; before step three the check has two successes
	// and the model votes to stop.
	if len(st.Steps) != 2 {
		t.Errorf("steps = %+v, want early conclusion after two", st.Steps)
	}
}

func TestDecodePlan(t *testing.T) {
	raw := "```json\n" + `{"plan": [
		{"step": 1, "action": "a", "tool": "wikipedia", "query": "topic"},
		{"step": 2, "action": "b", "tool": "arxiv"},
		{"step": 3, "action": "c", "query": "no tool"}
	]}` + "\n```"
	steps := decodePlan(raw, "original query")
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2 (tool-less step dropped)", len(steps))
	}
	if steps[1].Query != "original query" {
		t.Errorf("query-less step query = %q, want fallback to original", steps[1].Query)
	}
}

func TestRenderContextEmpty(t *testing.T) {
	if got := renderContext(nil, 3); got != "" {
		t.Errorf("renderContext(nil) = %q", got)
	}
}
