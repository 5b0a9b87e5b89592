package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-1.5-flash"
	defaultGeminiTimeout = 60 * time.Second
)

// Gemini calls the Google Generative Language REST API. One prompt in, one
// text candidate out; anything else is a *CallError.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// GeminiOption configures the client.
type GeminiOption func(*Gemini)

// WithModel overrides the model name.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) GeminiOption {
	return func(g *Gemini) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *Gemini) {
		if c != nil {
			g.client = c
		}
	}
}

// NewGemini creates a Gemini client with sensible defaults.
func NewGemini(apiKey string, opts ...GeminiOption) *Gemini {
	g := &Gemini{
		apiKey:  apiKey,
		model:   defaultGeminiModel,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: defaultGeminiTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Model returns the configured model name.
func (g *Gemini) Model() string { return g.model }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Invoke implements ports.ModelClient.
func (g *Gemini) Invoke(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", &CallError{Provider: "gemini", Err: err}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &CallError{Provider: "gemini", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &CallError{Provider: "gemini", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &CallError{Provider: "gemini", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &CallError{
			Provider: "gemini",
			Err:      fmt.Errorf("http %d: %s", resp.StatusCode, firstLine(string(body))),
		}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &CallError{Provider: "gemini", Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.Error != nil {
		return "", &CallError{
			Provider: "gemini",
			Err:      fmt.Errorf("api %s: %s", parsed.Error.Status, parsed.Error.Message),
		}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &CallError{Provider: "gemini", Err: fmt.Errorf("empty response")}
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
