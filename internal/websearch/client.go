// Package websearch implements the pipeline's Searcher interface over the
// Google Custom Search JSON API.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prodmap/prodmap/pkg/errors"
	"github.com/prodmap/prodmap/pkg/pipeline"
)

const (
	defaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	defaultTimeout = 15 * time.Second

	// The API rejects num values above 10.
	maxResultsPerCall = 10
)

// Config holds the Custom Search settings.
type Config struct {
	APIKey  string
	CX      string // search engine ID
	BaseURL string
	Timeout time.Duration
}

// Client queries the Custom Search API. Safe for concurrent use.
type Client struct {
	apiKey     string
	cx         string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Custom Search client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &errors.ConfigError{
			Component: "websearch",
			Message:   "GOOGLE_CSE_API_KEY not set",
			Err:       errors.ErrAPIKeyRequired,
		}
	}
	if cfg.CX == "" {
		return nil, &errors.ConfigError{
			Component: "websearch",
			Message:   "GOOGLE_CSE_CX not set",
		}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:     cfg.APIKey,
		cx:         cfg.CX,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// searchResponse mirrors the slice of the API response we consume.
type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search implements pipeline.Searcher.
func (c *Client) Search(ctx context.Context, query string, n int) ([]pipeline.SearchResult, error) {
	if n <= 0 || n > maxResultsPerCall {
		n = maxResultsPerCall
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(n))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.WrapCollaborator("search", "request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapCollaborator("search", "request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapCollaborator("search", "read", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewCollaboratorError("search", "request",
			fmt.Sprintf("search API returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.WrapParse("json", "malformed search response", err)
	}

	results := make([]pipeline.SearchResult, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		results = append(results, pipeline.SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
