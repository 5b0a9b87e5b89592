package cli

import (
	"fmt"
	"log/slog"

	espalier "github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/llm"
	"github.com/aretw0/espalier/pkg/tools"
)

// NewLogger builds the application logger from config plus the debug flag.
func NewLogger(cfg *config.Config, debug bool) *slog.Logger {
	level := logging.ParseLevel(cfg.Log.Level)
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// NewAssistant assembles an Assistant from configuration: the paced Gemini
// client, the standard tool sets, and any extra hooks (e.g. metrics).
func NewAssistant(cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*espalier.Assistant, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: set GEMINI_API_KEY or model.api_key in the config file")
	}

	model := llm.NewPaced(
		llm.NewGemini(apiKey, llm.WithModel(cfg.Model.Name)),
		cfg.Model.Pacing.Std(),
	)

	repl := tools.NewPythonREPL(
		tools.WithInterpreter(cfg.Tools.PythonInterpreter),
		tools.WithREPLTimeout(cfg.Tools.Timeout.Std()),
	)
	web := tools.NewWebSearch()

	return espalier.New(
		espalier.WithModel(model),
		espalier.WithLogger(logger),
		espalier.WithHooks(hooks),
		espalier.WithMaxIterations(cfg.MaxIterations),
		espalier.WithTools(repl, web),
		espalier.WithResearchTools(tools.NewWikipedia(), tools.NewArxiv(), web, repl),
	)
}
