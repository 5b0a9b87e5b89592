package react

import (
	"fmt"
	"strings"
)

// Entry is one round's contribution to the scratchpad. Action rounds fill
// all four fields; reasoning and malformed rounds carry only a thought.
type Entry struct {
	Thought     string
	Action      string
	ActionInput string
	Observation string
}

// Scratchpad accumulates the transcript of prior rounds as structured
// entries. Rendering to prompt text happens only at prompt-build time, so
// the loop's state stays inspectable independent of formatting.
type Scratchpad struct {
	entries []Entry
}

// Append records one round.
func (s *Scratchpad) Append(e Entry) {
	s.entries = append(s.entries, e)
}

// Len returns the number of recorded rounds.
func (s *Scratchpad) Len() int { return len(s.entries) }

// Entries returns a copy of the recorded rounds.
func (s *Scratchpad) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Render produces the transcript text inserted after the prompt's leading
// "Thought:" label. The first entry's thought therefore omits its own label.
func (s *Scratchpad) Render() string {
	var b strings.Builder
	for i, e := range s.entries {
		if i == 0 {
			b.WriteString(e.Thought)
			b.WriteString("\n")
		} else if e.Thought != "" {
			fmt.Fprintf(&b, "Thought: %s\n", e.Thought)
		}
		if e.Action != "" {
			fmt.Fprintf(&b, "Action: %s\nAction Input: %s\nObservation: %s\n",
				e.Action, e.ActionInput, e.Observation)
		}
	}
	return b.String()
}
