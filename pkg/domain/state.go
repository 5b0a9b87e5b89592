package domain

import (
	"fmt"
	"strings"
)

// Route identifies the processing path chosen for a query.
type Route string

const (
	// RouteGeneral handles simple, factual or computational queries with a
	// bounded tool-use loop.
	RouteGeneral Route = "general"
	// RouteResearch handles multi-step queries with planning and synthesis.
	RouteResearch Route = "research"
)

// ParseRoute maps a raw label onto a known Route. It is strict: callers that
// want fail-safe behavior (the routing policy does) handle the error themselves.
func ParseRoute(s string) (Route, error) {
	switch Route(strings.ToLower(strings.TrimSpace(s))) {
	case RouteGeneral:
		return RouteGeneral, nil
	case RouteResearch:
		return RouteResearch, nil
	}
	return "", fmt.Errorf("unknown route: %q", s)
}

// Role tags a message turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged text turn accumulated during a query.
type Message struct {
	Role    Role
	Content string
}

// ToolStep records one tool invocation made while answering a query,
// in invocation order.
type ToolStep struct {
	Tool   string `json:"tool"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// State is the single mutable object threaded through the graph for one
// in-flight query. It is exclusively owned by that query and never shared
// across concurrent executions.
type State struct {
	// Messages holds the role-tagged turns produced while processing.
	Messages []Message

	// Query is the current input.
	Query string

	// Route is written by the routing node; the conditional edge reads it
	// back to pick the successor, so both sides share the Route vocabulary.
	Route Route

	// Rationale is the routing policy's free-text justification.
	Rationale string

	// Response is empty until a path node completes.
	Response string

	// Steps lists the tool invocations recorded by the chosen path.
	Steps []ToolStep

	// Err carries a failure description. At the end of a run exactly one of
	// Response and Err is set.
	Err string

	// History is a bounded, read-only view of the session's interaction log,
	// never the full mutable log.
	History []InteractionRecord
}

// NewState packages a query and a bounded history view for one graph run.
func NewState(query string, history []InteractionRecord) *State {
	return &State{Query: query, History: history}
}

// AppendMessage adds a turn, skipping consecutive duplicates of the same content.
func (s *State) AppendMessage(role Role, content string) {
	if n := len(s.Messages); n > 0 && s.Messages[n-1].Content == content {
		return
	}
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}
