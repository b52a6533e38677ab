package twitterx

import (
	"context"
	"fmt"
	"strconv"

	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
)

const (
	minResults = 10
	maxResults = 100
)

// Client fetches recent post texts from the Twitter v2 search API.
type Client struct {
	bearerToken string
	baseURL     string
	http        *xhttp.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		bearerToken: cfg.Social.BearerToken,
		baseURL:     cfg.Social.BaseURL,
		http:        xhttp.NewClient(xhttp.WithTimeout(cfg.Social.Timeout)),
	}
}

type searchResponse struct {
	Data []struct {
		Text string `json:"text"`
	} `json:"data"`
}

// SearchRecent returns the text of recent posts matching query. The API
// requires max_results between 10 and 100, so max is clamped to that range.
func (c *Client) SearchRecent(ctx context.Context, query string, max int) ([]string, error) {
	if c.bearerToken == "" {
		return nil, fmt.Errorf("search recent: bearer token not configured")
	}
	if max < minResults {
		max = minResults
	}
	if max > maxResults {
		max = maxResults
	}

	var resp searchResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/tweets/search/recent",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.bearerToken,
		},
		QueryParams: map[string][]string{
			"query":        {query},
			"max_results":  {strconv.Itoa(max)},
			"tweet.fields": {"text"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("search recent: %w", err)
	}

	texts := make([]string, 0, len(resp.Data))
	for _, t := range resp.Data {
		if t.Text != "" {
			texts = append(texts, t.Text)
		}
	}
	return texts, nil
}

var _ drepo.TextSource = (*Client)(nil)
