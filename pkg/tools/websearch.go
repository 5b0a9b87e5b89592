package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const webSearchMaxResults = 5

// WebSearch queries DuckDuckGo's lite HTML interface. The lite page has a
// stable, simple structure suited to regex extraction.
type WebSearch struct {
	client *http.Client
}

// NewWebSearch creates a web search tool with a modest timeout.
func NewWebSearch() *WebSearch {
	return &WebSearch{client: &http.Client{Timeout: 15 * time.Second}}
}

// NewWebSearchWithClient uses the supplied HTTP client, mainly for tests.
func NewWebSearchWithClient(client *http.Client) *WebSearch {
	return &WebSearch{client: client}
}

func (w *WebSearch) Name() string { return "web_search" }

func (w *WebSearch) Description() string {
	return "Search the web for current information, news, and general knowledge. " +
		"Use this for up-to-date facts about current events, companies, people, " +
		"or any topic with recent developments."
}

// Run implements ports.Tool.
func (w *WebSearch) Run(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", errors.New("search query is empty")
	}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://lite.duckduckgo.com/lite/", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("web search http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	results := parseSearchHTML(string(body))
	if len(results) == 0 {
		return fmt.Sprintf("No search results found for %q.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Web search results for %q:\n", query)
	for _, r := range results {
		fmt.Fprintf(&b, "\n%s\n%s\n", r.title, r.url)
		if r.snippet != "" {
			fmt.Fprintf(&b, "%s\n", r.snippet)
		}
	}
	return b.String(), nil
}

type searchResult struct {
	title, url, snippet string
}

var (
	reResultLink    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	reResultLinkAlt = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	reSnippet       = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>(.*?)</td>`)
	reAnyTag        = regexp.MustCompile(`<[^>]+>`)
)

// parseSearchHTML extracts results from the DuckDuckGo lite page.
func parseSearchHTML(html string) []searchResult {
	matches := reResultLink.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = reResultLinkAlt.FindAllStringSubmatch(html, -1)
	}
	snippets := reSnippet.FindAllStringSubmatch(html, -1)

	var results []searchResult
	for i, m := range matches {
		link := strings.TrimSpace(m[1])
		title := cleanHTML(m[2])
		if link == "" || title == "" {
			continue
		}
		snippet := ""
		if i < len(snippets) {
			snippet = cleanHTML(snippets[i][1])
		}
		results = append(results, searchResult{title: title, url: link, snippet: snippet})
		if len(results) >= webSearchMaxResults {
			break
		}
	}
	return results
}

var htmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

func cleanHTML(s string) string {
	s = reAnyTag.ReplaceAllString(s, "")
	return strings.TrimSpace(htmlEntities.Replace(s))
}
