package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	espalier "github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
)

// Display renders assistant output for the terminal. Markdown answers go
// through glamour when stdout is a TTY; otherwise plain text.
type Display struct {
	out      io.Writer
	profile  termenv.Profile
	render   func(string) (string, error)
	verbose  bool
	markdown bool
}

// NewDisplay builds a display for stdout. verbose includes the step trace.
func NewDisplay(verbose bool) *Display {
	d := &Display{
		out:     os.Stdout,
		profile: termenv.ColorProfile(),
		verbose: verbose,
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle()); err == nil {
			d.render = r.Render
			d.markdown = true
		}
	}
	return d
}

// Banner prints the startup header for the interactive session.
func (d *Display) Banner(version string) {
	title := termenv.String("espalier").Foreground(d.profile.Color("#818cf8")).Bold()
	fmt.Fprintf(d.out, "\n%s v%s\n", title, version)
	fmt.Fprintln(d.out, "Ask anything. Commands: history, clear, exit.")
	fmt.Fprintln(d.out)
}

// Result prints one query outcome.
func (d *Display) Result(res *espalier.Result) {
	route := termenv.String(string(res.Route)).Foreground(d.profile.Color("#a78bfa"))
	fmt.Fprintf(d.out, "[route: %s] %s\n\n", route, res.Rationale)

	if d.verbose && len(res.Steps) > 0 {
		d.steps(res.Steps)
	}

	answer := res.Response
	if d.markdown {
		if rendered, err := d.render(answer); err == nil {
			answer = rendered
		}
	}
	fmt.Fprintln(d.out, strings.TrimRight(answer, "\n"))
	fmt.Fprintln(d.out)
}

// steps renders the tool trace as a markdown table.
func (d *Display) steps(steps []domain.ToolStep) {
	var b strings.Builder
	b.WriteString("| # | Tool | Input | Observation |\n|---|------|-------|-------------|\n")
	for i, s := range steps {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			i+1, s.Tool, cellText(s.Input), cellText(s.Output))
	}
	table := b.String()
	if d.markdown {
		if rendered, err := d.render(table); err == nil {
			table = rendered
		}
	}
	fmt.Fprintln(d.out, table)
}

// Error prints a failure in red.
func (d *Display) Error(err error) {
	msg := termenv.String("Error: " + err.Error()).Foreground(d.profile.Color("#f87171"))
	fmt.Fprintln(d.out, msg)
}

// Info prints a dim informational line.
func (d *Display) Info(text string) {
	fmt.Fprintln(d.out, termenv.String(text).Faint())
}

// History prints the session digest.
func (d *Display) History(summary string) {
	fmt.Fprintln(d.out, summary)
}

func cellText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}
