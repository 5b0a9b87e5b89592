package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	wikipediaMaxResults  = 3
	wikipediaExtractCap  = 4000
	wikipediaAPIEndpoint = "https://en.wikipedia.org/w/api.php"
)

// Wikipedia searches articles and returns plain-text extracts via the
// MediaWiki action API.
type Wikipedia struct {
	client   *http.Client
	endpoint string
}

// NewWikipedia creates a Wikipedia tool with a modest timeout.
func NewWikipedia() *Wikipedia {
	return &Wikipedia{
		client:   &http.Client{Timeout: 15 * time.Second},
		endpoint: wikipediaAPIEndpoint,
	}
}

// NewWikipediaWithEndpoint overrides the API endpoint, mainly for tests.
func NewWikipediaWithEndpoint(client *http.Client, endpoint string) *Wikipedia {
	return &Wikipedia{client: client, endpoint: endpoint}
}

func (w *Wikipedia) Name() string { return "wikipedia" }

func (w *Wikipedia) Description() string {
	return "Search Wikipedia for encyclopedic knowledge, historical information, " +
		"scientific concepts, biographies, and well-established facts. " +
		"Use this for queries that need reliable, structured information."
}

// Run implements ports.Tool.
func (w *Wikipedia) Run(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", errors.New("wikipedia query is empty")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", fmt.Sprint(wikipediaMaxResults))
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("exintro", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		w.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "espalier/1.0 (https://github.com/aretw0/espalier)")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Query struct {
			Pages map[string]struct {
				Title   string `json:"title"`
				Index   int    `json:"index"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("wikipedia decode: %w", err)
	}
	if len(parsed.Query.Pages) == 0 {
		return fmt.Sprintf("No Wikipedia articles found for %q.", query), nil
	}

	// Pages arrive keyed by ID; order by search rank.
	ordered := make([]struct{ title, extract string }, len(parsed.Query.Pages))
	for _, page := range parsed.Query.Pages {
		idx := page.Index - 1
		if idx < 0 || idx >= len(ordered) {
			idx = len(ordered) - 1
		}
		ordered[idx] = struct{ title, extract string }{page.Title, page.Extract}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Wikipedia results for %q:\n", query)
	for _, page := range ordered {
		if page.title == "" {
			continue
		}
		extract := page.extract
		if len(extract) > wikipediaExtractCap {
			extract = extract[:wikipediaExtractCap] + "..."
		}
		fmt.Fprintf(&b, "\n== %s ==\n%s\n", page.title, extract)
	}
	return b.String(), nil
}
