package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	replDefaultTimeout = 30 * time.Second
	replOutputCap      = 8000
)

var reCodeFence = regexp.MustCompile("(?s)```(?:python|py)?\\s*\\n?(.*?)```")

// PythonREPL executes Python snippets in a subprocess interpreter.
type PythonREPL struct {
	interpreter string
	timeout     time.Duration
}

// PythonREPLOption configures a PythonREPL.
type PythonREPLOption func(*PythonREPL)

// WithInterpreter overrides the interpreter binary.
func WithInterpreter(path string) PythonREPLOption {
	return func(r *PythonREPL) { r.interpreter = path }
}

// WithREPLTimeout overrides the per-execution timeout.
func WithREPLTimeout(d time.Duration) PythonREPLOption {
	return func(r *PythonREPL) { r.timeout = d }
}

// NewPythonREPL creates a PythonREPL backed by python3.
func NewPythonREPL(opts ...PythonREPLOption) *PythonREPL {
	r := &PythonREPL{interpreter: "python3", timeout: replDefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PythonREPL) Name() string { return "python_repl" }

func (r *PythonREPL) Description() string {
	return "Execute Python code for calculations, data manipulation, or " +
		"quick computations. Input must be valid Python; the printed " +
		"output is returned. A bare expression is printed automatically."
}

// Run implements ports.Tool.
func (r *PythonREPL) Run(ctx context.Context, input string) (string, error) {
	code := CleanPythonInput(input)
	if code == "" {
		return "", errors.New("python_repl input is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.interpreter, "-c", code)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("python execution timed out after %s", r.timeout)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("python error: %s", lastLines(msg, 5))
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "Code executed successfully with no output. Use print() to see values.", nil
	}
	if len(out) > replOutputCap {
		out = out[:replOutputCap] + "\n... (output truncated)"
	}
	return out, nil
}

// CleanPythonInput strips markdown code fences and wraps a single bare
// expression in print() so its value is visible.
func CleanPythonInput(input string) string {
	code := strings.TrimSpace(input)
	if m := reCodeFence.FindStringSubmatch(code); m != nil {
		code = strings.TrimSpace(m[1])
	}
	code = strings.Trim(code, "`")
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if isBareExpression(code) {
		code = "print(" + code + ")"
	}
	return code
}

// isBareExpression reports whether the snippet looks like a single
// expression rather than a statement or multi-line program.
func isBareExpression(code string) bool {
	if strings.ContainsAny(code, "\n;") {
		return false
	}
	if strings.Contains(code, "print(") {
		return false
	}
	keywords := []string{"import ", "from ", "def ", "class ", "for ", "while ",
		"if ", "with ", "return ", "try:", "raise ", "assert "}
	for _, kw := range keywords {
		if strings.HasPrefix(code, kw) {
			return false
		}
	}
	// Assignment, but not comparison operators.
	if idx := strings.Index(code, "="); idx >= 0 {
		next := byte(0)
		if idx+1 < len(code) {
			next = code[idx+1]
		}
		prev := byte(0)
		if idx > 0 {
			prev = code[idx-1]
		}
		if next != '=' && prev != '=' && prev != '!' && prev != '<' && prev != '>' {
			return false
		}
	}
	return true
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
