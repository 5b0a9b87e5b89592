package espalier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/espalier/internal/agents"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/graph"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/tools"
)

// Node names of the compiled query graph.
const (
	NodeRouter   = "router"
	NodeGeneral  = "general_qa"
	NodeResearch = "research"
)

// Assistant is the high-level entry point for the espalier library.
// It routes each query through a compiled graph and keeps the session's
// interaction log.
type Assistant struct {
	model         ports.ModelClient
	generalTools  *tools.Registry
	researchTools *tools.Registry
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	maxIterations int
	historyView   int

	graph   *graph.Graph
	history *domain.History

	// One query in flight at a time. History stays consistent and the
	// provider sees sequential traffic.
	mu sync.Mutex
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithModel sets the model client behind every outbound call.
func WithModel(m ports.ModelClient) Option {
	return func(a *Assistant) { a.model = m }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) { a.logger = logger }
}

// WithHooks registers observability hooks. Multiple calls merge.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assistant) { a.hooks = domain.MergeHooks(a.hooks, hooks) }
}

// WithTools replaces the general path's tool set.
func WithTools(ts ...ports.Tool) Option {
	return func(a *Assistant) { a.generalTools = tools.NewRegistry(ts...) }
}

// WithResearchTools replaces the research path's tool set.
func WithResearchTools(ts ...ports.Tool) Option {
	return func(a *Assistant) { a.researchTools = tools.NewRegistry(ts...) }
}

// WithMaxIterations bounds the reasoning rounds per query.
func WithMaxIterations(n int) Option {
	return func(a *Assistant) { a.maxIterations = n }
}

// WithHistoryWindow sets how many past interactions each query may see.
// Consumers inside take smaller slices of this view as they need.
func WithHistoryWindow(k int) Option {
	return func(a *Assistant) {
		if k > 0 {
			a.historyView = k
		}
	}
}

// Result is the outcome of one Ask call.
type Result struct {
	Query     string            `json:"query"`
	Route     domain.Route      `json:"route"`
	Rationale string            `json:"rationale,omitempty"`
	Response  string            `json:"response,omitempty"`
	Steps     []domain.ToolStep `json:"steps,omitempty"`
	Err       string            `json:"error,omitempty"`
}

// New builds an Assistant and compiles its query graph. A model client is
// required; tools default to the standard sets (REPL and web search on the
// general path, all four on the research path).
func New(opts ...Option) (*Assistant, error) {
	a := &Assistant{
		logger:        logging.NewNop(),
		maxIterations: 10,
		historyView:   5,
		history:       domain.NewHistory(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.model == nil {
		return nil, fmt.Errorf("espalier: a model client is required")
	}
	if a.generalTools == nil {
		a.generalTools = tools.NewRegistry(tools.NewPythonREPL(), tools.NewWebSearch())
	}
	if a.researchTools == nil {
		a.researchTools = tools.NewRegistry(
			tools.NewWikipedia(), tools.NewArxiv(), tools.NewWebSearch(), tools.NewPythonREPL())
	}

	router := agents.NewRouter(a.model, a.hooks, a.logger)
	general := agents.NewGeneral(a.model, a.generalTools, a.hooks, a.maxIterations, a.logger)
	research := agents.NewResearch(a.model, a.researchTools, a.hooks, a.maxIterations, a.logger)

	g, err := graph.NewBuilder().
		AddNode(NodeRouter, router.Decide).
		AddNode(NodeGeneral, general.Answer).
		AddNode(NodeResearch, research.Answer).
		SetEntry(NodeRouter).
		Hooks(a.hooks).
		AddConditionalEdges(NodeRouter, func(s *domain.State) string {
			return string(s.Route)
		}, map[string]string{
			string(domain.RouteGeneral):  NodeGeneral,
			string(domain.RouteResearch): NodeResearch,
		}).
		Compile()
	if err != nil {
		return nil, fmt.Errorf("espalier: compile graph: %w", err)
	}
	a.graph = g
	return a, nil
}

// Ask processes one query through routing and the chosen path. Queries are
// serialized; concurrent callers queue. The interaction is appended to the
// session log even when the query fails, with Errored set.
func (a *Assistant) Ask(ctx context.Context, query string) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := domain.NewState(query, a.history.Window(a.historyView))
	runErr := a.graph.Run(ctx, st)

	res := &Result{
		Query:     query,
		Route:     st.Route,
		Rationale: st.Rationale,
		Response:  st.Response,
		Steps:     st.Steps,
	}

	rec := domain.InteractionRecord{
		Timestamp: time.Now(),
		Query:     query,
		Route:     st.Route,
		Rationale: st.Rationale,
		Response:  st.Response,
	}
	if runErr != nil {
		st.Err = runErr.Error()
		st.Response = ""
		res.Response = ""
		res.Err = runErr.Error()
		rec.Response = "error: " + runErr.Error()
		rec.Errored = true
		a.history.Append(rec)
		a.logger.Error("query failed", "error", runErr, "route", st.Route)
		return res, runErr
	}

	a.history.Append(rec)
	a.logger.Info("query answered", "route", st.Route, "steps", len(st.Steps))
	return res, nil
}

// History returns a copy of the session's interaction log.
func (a *Assistant) History() []domain.InteractionRecord {
	return a.history.All()
}

// HistoryLen reports the number of recorded interactions.
func (a *Assistant) HistoryLen() int {
	return a.history.Len()
}

// ClearHistory wipes the session's interaction log.
func (a *Assistant) ClearHistory() {
	a.history.Clear()
}

// HistorySummary renders a numbered digest of the session log.
func (a *Assistant) HistorySummary() string {
	return a.history.Summary()
}
