package finbert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
)

func TestDecodeDistributionsBatched(t *testing.T) {
	raw := json.RawMessage(`[
		[{"label":"positive","score":0.91},{"label":"neutral","score":0.07}],
		[{"label":"negative","score":0.85}]
	]`)

	dists, err := decodeDistributions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dists) != 2 {
		t.Fatalf("expected 2 distributions, got %d", len(dists))
	}
	if dists[0][0].Label != "positive" || dists[0][0].Score != 0.91 {
		t.Fatalf("unexpected first label: %+v", dists[0][0])
	}
	if dists[1][0].Label != "negative" {
		t.Fatalf("unexpected second distribution: %+v", dists[1])
	}
}

func TestDecodeDistributionsFlat(t *testing.T) {
	raw := json.RawMessage(`[{"label":"neutral","score":0.6},{"label":"positive","score":0.3}]`)

	dists, err := decodeDistributions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dists) != 1 {
		t.Fatalf("expected flat list to decode as one distribution, got %d", len(dists))
	}
	if len(dists[0]) != 2 || dists[0][0].Label != "neutral" {
		t.Fatalf("unexpected distribution: %+v", dists[0])
	}
}

func TestDecodeDistributionsRejectsUnknownShape(t *testing.T) {
	if _, err := decodeDistributions(json.RawMessage(`{"error":"model loading"}`)); err == nil {
		t.Fatalf("expected error for object payload")
	}
	if _, err := decodeDistributions(json.RawMessage(`"oops"`)); err == nil {
		t.Fatalf("expected error for string payload")
	}
}

func TestClassifyRoundTrip(t *testing.T) {
	var gotAuth string
	var gotBody inferenceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"positive","score":0.8}]]`))
	}))
	defer srv.Close()

	c := &Client{
		apiKey:  "token",
		baseURL: srv.URL,
		model:   "ProsusAI/finbert",
		http:    xhttp.NewClient(xhttp.WithTimeout(5 * time.Second)),
	}

	dists, err := c.Classify(context.Background(), []string{"Great quarter for ACME."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}
	if len(gotBody.Inputs) != 1 || gotBody.Inputs[0] != "Great quarter for ACME." {
		t.Fatalf("unexpected request inputs: %+v", gotBody.Inputs)
	}
	if len(dists) != 1 || dists[0][0] != (models.SentimentLabel{Label: "positive", Score: 0.8}) {
		t.Fatalf("unexpected distributions: %+v", dists)
	}
}
