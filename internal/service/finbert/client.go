package finbert

import (
	"context"
	"encoding/json"
	"fmt"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
)

// Client delegates sentiment classification to a hosted FinBERT model via
// the HuggingFace inference API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *xhttp.Client
}

// New creates a new FinBERT inference client.
func New(cfg *config.Config) *Client {
	return &Client{
		apiKey:  cfg.Sentiment.APIKey,
		baseURL: cfg.Sentiment.BaseURL,
		model:   cfg.Sentiment.Model,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Sentiment.Timeout)),
	}
}

type inferenceRequest struct {
	Inputs []string `json:"inputs"`
}

// Classify sends a batch of texts and returns one label distribution per
// input. The inference API answers with either a flat list of label/score
// objects (single input) or a list of lists (batched); both shapes are
// accepted.
func (c *Client) Classify(ctx context.Context, texts []string) ([][]models.SentimentLabel, error) {
	headers := map[string]string{"Content-Type": "application/json"}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var raw json.RawMessage
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + "/" + c.model,
		Headers: headers,
		Body:    inferenceRequest{Inputs: texts},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	return decodeDistributions(raw)
}

// decodeDistributions accepts both response shapes of the inference API:
// a list of per-input label lists, or a flat label list for a single input.
func decodeDistributions(raw json.RawMessage) ([][]models.SentimentLabel, error) {
	var batched [][]models.SentimentLabel
	if err := json.Unmarshal(raw, &batched); err == nil {
		return batched, nil
	}

	var flat []models.SentimentLabel
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return [][]models.SentimentLabel{flat}, nil
	}

	return nil, fmt.Errorf("unrecognized classifier output: %s", raw)
}

var _ drepo.SentimentClassifier = (*Client)(nil)
