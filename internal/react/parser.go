// Package react implements the bounded reasoning loop: the output parser
// for the Thought/Action/Final Answer format, the scratchpad that carries
// state between rounds, the tool dispatcher, and the loop itself.
package react

import (
	"regexp"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

var (
	reFinalAnswer = regexp.MustCompile(`(?is)Final\s*Answer\s*:\s*(.*)\z`)
	reAction      = regexp.MustCompile(`(?i)Action\s*:\s*([^\n]+)`)
	reActionInput = regexp.MustCompile(`(?is)Action\s*Input\s*:\s*(.+?)(?:\n\s*(?:Observation|Thought|Action|Final\s*Answer)\s*:|\z)`)
	reThought     = regexp.MustCompile(`(?is)Thought\s*:\s*(.+?)(?:\n\s*(?:Observation|Action|Final\s*Answer|Thought)\s*:|\z)`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// Parse classifies one block of model output. It always returns a decision;
// text that fits no recognized shape comes back as KindMalformed rather
// than an error, so the loop can feed it back and let the model recover.
func Parse(raw string) domain.Decision {
	text := strings.TrimSpace(raw)
	d := domain.Decision{Raw: text}

	// Only the first Thought is meaningful; the model occasionally repeats
	// the label within one block.
	if m := reThought.FindStringSubmatch(text); m != nil {
		d.Thought = strings.TrimSpace(m[1])
	}

	// A Final Answer label anywhere wins over any Action in the same block.
	if m := reFinalAnswer.FindStringSubmatch(text); m != nil {
		d.Kind = domain.DecisionFinalAnswer
		d.Answer = strings.TrimSpace(m[1])
		return d
	}

	action := reAction.FindStringSubmatch(text)
	input := reActionInput.FindStringSubmatch(text)
	if action != nil && input != nil {
		d.Kind = domain.DecisionAction
		d.Tool = NormalizeToolName(action[1])
		d.Input = strings.TrimSpace(input[1])
		return d
	}

	if d.Thought != "" {
		d.Kind = domain.DecisionReasoning
		return d
	}

	d.Kind = domain.DecisionMalformed
	return d
}

// NormalizeToolName lower-cases a tool label and collapses internal
// whitespace to single underscores, so "Web Search" matches "web_search".
func NormalizeToolName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Trim(name, "`\"'[]")
	return reWhitespace.ReplaceAllString(name, "_")
}
