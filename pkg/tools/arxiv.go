package tools

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	arxivMaxResults  = 5
	arxivAbstractCap = 1500
	arxivAPIEndpoint = "http://export.arxiv.org/api/query"
)

// Arxiv queries the arXiv Atom API for academic papers.
type Arxiv struct {
	client   *http.Client
	endpoint string
}

// NewArxiv creates an Arxiv tool with a modest timeout.
func NewArxiv() *Arxiv {
	return &Arxiv{
		client:   &http.Client{Timeout: 20 * time.Second},
		endpoint: arxivAPIEndpoint,
	}
}

// NewArxivWithEndpoint overrides the API endpoint, mainly for tests.
func NewArxivWithEndpoint(client *http.Client, endpoint string) *Arxiv {
	return &Arxiv{client: client, endpoint: endpoint}
}

func (a *Arxiv) Name() string { return "arxiv" }

func (a *Arxiv) Description() string {
	return "Search arXiv for academic papers, research publications, and " +
		"scientific preprints. Use this for queries about recent research, " +
		"technical methods, or scholarly work."
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// Run implements ports.Tool.
func (a *Arxiv) Run(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", errors.New("arxiv query is empty")
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprint(arxivMaxResults))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("arxiv http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "", fmt.Errorf("arxiv decode: %w", err)
	}
	if len(feed.Entries) == 0 {
		return fmt.Sprintf("No arXiv papers found for %q.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "arXiv papers for %q:\n", query)
	for i, entry := range feed.Entries {
		title := collapseWhitespace(entry.Title)
		abstract := collapseWhitespace(entry.Summary)
		if len(abstract) > arxivAbstractCap {
			abstract = abstract[:arxivAbstractCap] + "..."
		}
		authors := make([]string, 0, len(entry.Authors))
		for _, au := range entry.Authors {
			authors = append(authors, au.Name)
		}
		link := ""
		for _, l := range entry.Links {
			if l.Rel == "alternate" || link == "" {
				link = l.Href
			}
		}
		published := entry.Published
		if len(published) >= 10 {
			published = published[:10]
		}
		fmt.Fprintf(&b, "\n%d. %s\n   Authors: %s\n   Published: %s\n   Link: %s\n   Abstract: %s\n",
			i+1, title, strings.Join(authors, ", "), published, link, abstract)
	}
	return b.String(), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
