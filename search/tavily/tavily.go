// Package tavily implements search.Searcher on top of the Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/blogmesh/search"
)

// DefaultEndpoint is the Tavily search URL.
const DefaultEndpoint = "https://api.tavily.com/search"

// ErrMissingAPIKey is returned by New when no key is configured.
var ErrMissingAPIKey = errors.New("tavily api key missing")

// Options configure the Tavily client.
type Options struct {
	APIKey      string
	Endpoint    string
	SearchDepth string // "basic" or "advanced"
	HTTPClient  *http.Client
}

// Client is a Tavily search client.
type Client struct {
	opts Options
}

type searchRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth,omitempty"`
}

type searchResponse struct {
	Results []search.Result `json:"results"`
}

type errorResponse struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
}

// New creates a Tavily client.
func New(optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Endpoint:    DefaultEndpoint,
		SearchDepth: "basic",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{opts: opts}, nil
}

// Search implements search.Searcher.
func (c *Client) Search(ctx context.Context, query string, max int) ([]search.Result, error) {
	if max <= 0 || max > search.MaxResults {
		max = search.MaxResults
	}

	payload, err := json.Marshal(searchRequest{
		Query:       query,
		MaxResults:  max,
		SearchDepth: c.opts.SearchDepth,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tavily read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Detail.Error != "" {
			return nil, fmt.Errorf("tavily status %d: %s", resp.StatusCode, er.Detail.Error)
		}
		return nil, fmt.Errorf("tavily status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("tavily decode response: %w", err)
	}
	if len(sr.Results) > max {
		sr.Results = sr.Results[:max]
	}
	return sr.Results, nil
}
