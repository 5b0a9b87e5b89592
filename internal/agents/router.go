// Package agents implements the graph's node functions: the routing
// supervisor, the general question-answering path, and the research path.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/espalier/internal/prompts"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

const (
	routingWindow   = 3
	generalWindow   = 5
	synthesisWindow = 3

	contextResponseCap = 100
)

var reJSONFence = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

// Router decides which path handles a query. It fails safe: an unknown
// route label or an unparseable reply falls back to the general path with
// the raw reply recorded as rationale. Only the outbound model call itself
// can abort a query here.
type Router struct {
	model  ports.ModelClient
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// NewRouter builds the routing supervisor.
func NewRouter(model ports.ModelClient, hooks domain.LifecycleHooks, logger *slog.Logger) *Router {
	return &Router{model: model, hooks: hooks, logger: logger}
}

// Decide is the routing node function. It writes Route and Rationale into
// the state for the conditional edge to read back.
func (r *Router) Decide(ctx context.Context, st *domain.State) error {
	prompt := prompts.Routing(st.Query, renderContext(st.History, routingWindow))

	start := time.Now()
	raw, err := r.model.Invoke(ctx, prompt)
	r.hooks.EmitModelCall(ctx, time.Since(start), err != nil)
	if err != nil {
		return fmt.Errorf("routing call: %w", err)
	}

	route, rationale := parseRoutingReply(raw)
	st.Route = route
	st.Rationale = rationale
	st.AppendMessage(domain.RoleAssistant, fmt.Sprintf("routing to %s: %s", route, rationale))

	r.hooks.EmitRouteDecision(ctx, route, rationale)
	r.logger.Debug("route decided", "route", route, "rationale", rationale)
	return nil
}

// parseRoutingReply extracts {route, reasoning} JSON from the model reply.
// Anything unrecognizable defaults to the general route with the raw reply
// as rationale.
func parseRoutingReply(raw string) (domain.Route, string) {
	text := StripJSONFences(raw)

	var reply struct {
		Route     string `json:"route"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return domain.RouteGeneral, strings.TrimSpace(raw)
	}
	route, err := domain.ParseRoute(reply.Route)
	if err != nil {
		return domain.RouteGeneral, strings.TrimSpace(raw)
	}
	return route, reply.Reasoning
}

// StripJSONFences unwraps a markdown code fence around a JSON payload.
// Models add fences despite instructions not to.
func StripJSONFences(raw string) string {
	text := strings.TrimSpace(raw)
	if m := reJSONFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	return text
}

// renderContext formats the last k interactions as a conversation block,
// chronological, with long responses truncated.
func renderContext(history []domain.InteractionRecord, k int) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > k {
		history = history[len(history)-k:]
	}
	var b strings.Builder
	for _, rec := range history {
		response := rec.Response
		if len(response) > contextResponseCap {
			response = response[:contextResponseCap] + "..."
		}
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", rec.Query, response)
	}
	return b.String()
}
