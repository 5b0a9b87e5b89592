// Package config loads the optional espalier.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "2s" decode.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the assistant's tunable settings. Every field has a default;
// a missing file yields the default configuration rather than an error.
type Config struct {
	Model struct {
		Name   string `yaml:"name"`
		APIKey string `yaml:"api_key"`
		// Pacing is the minimum spacing between model calls, e.g. "1s".
		Pacing Duration `yaml:"pacing"`
	} `yaml:"model"`

	MaxIterations int `yaml:"max_iterations"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Serve struct {
		Addr string `yaml:"addr"`
	} `yaml:"serve"`

	Tools struct {
		// PythonInterpreter is the binary used by the python_repl tool.
		PythonInterpreter string `yaml:"python_interpreter"`
		// Timeout bounds each tool invocation with a subprocess.
		Timeout Duration `yaml:"timeout"`
	} `yaml:"tools"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Model.Name = "gemini-1.5-flash"
	cfg.Model.Pacing = Duration(time.Second)
	cfg.MaxIterations = 10
	cfg.Log.Level = "info"
	cfg.Serve.Addr = ":8080"
	cfg.Tools.PythonInterpreter = "python3"
	cfg.Tools.Timeout = Duration(30 * time.Second)
	return cfg
}

// Load reads a YAML config file, overlaying it on the defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = Default().MaxIterations
	}
	return cfg, nil
}

// APIKey resolves the model key: the config value wins, then GEMINI_API_KEY.
func (c *Config) APIKey() string {
	if c.Model.APIKey != "" {
		return c.Model.APIKey
	}
	return os.Getenv("GEMINI_API_KEY")
}
