package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sotto-labs/sotto-core/internal/config"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Searcher is the web search provider contract.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// TavilyClient calls Tavily's search API with bearer auth.
type TavilyClient struct {
	apiKey  string
	country string
	httpc   *http.Client
}

func NewTavilyClient(apiKey string, cfg config.SearchConfig) *TavilyClient {
	return &TavilyClient{
		apiKey:  apiKey,
		country: strings.TrimSpace(cfg.Country),
		httpc:   &http.Client{Timeout: cfg.Timeout()},
	}
}

type tavilyRequest struct {
	Query         string `json:"query"`
	IncludeAnswer string `json:"include_answer"`
	SearchDepth   string `json:"search_depth"`
	Country       string `json:"country,omitempty"`
}

type tavilyResponse struct {
	Results []Result `json:"results"`
}

func (c *TavilyClient) Search(ctx context.Context, query string) ([]Result, error) {
	payload := tavilyRequest{
		Query:         query,
		IncludeAnswer: "basic",
		SearchDepth:   "basic",
		Country:       c.country,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tavily returned status %s", resp.Status)
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}
	return out.Results, nil
}

// FactsBlock flattens search results into the compact text handed to the
// compose prompt. Empty results are an error, never an empty block.
func FactsBlock(results []Result) (string, error) {
	var chunks []string
	for _, r := range results {
		title := strings.TrimSpace(r.Title)
		url := strings.TrimSpace(r.URL)
		content := strings.TrimSpace(r.Content)

		var b strings.Builder
		if title != "" {
			b.WriteString(title)
		}
		if url != "" {
			if b.Len() > 0 {
				b.WriteString(" — ")
			}
			b.WriteString(url)
		}
		if content != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(content)
		}
		if b.Len() > 0 {
			chunks = append(chunks, b.String())
		}
	}
	if len(chunks) == 0 {
		return "", errors.New("search returned no results")
	}
	return strings.Join(chunks, "\n\n"), nil
}
