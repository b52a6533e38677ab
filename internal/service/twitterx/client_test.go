package twitterx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xhttp "MarketPulse/pkg/http"
)

func newTestClient(baseURL string) *Client {
	return &Client{
		bearerToken: "token",
		baseURL:     baseURL,
		http:        xhttp.NewClient(xhttp.WithTimeout(5 * time.Second)),
	}
}

func TestSearchRecentWithoutToken(t *testing.T) {
	c := &Client{http: xhttp.NewClient()}
	if _, err := c.SearchRecent(context.Background(), "$AAPL", 10); err == nil {
		t.Fatalf("expected error without bearer token")
	}
}

func TestSearchRecentClampsMaxResults(t *testing.T) {
	cases := []struct {
		max  int
		want string
	}{
		{0, "10"},
		{5, "10"},
		{42, "42"},
		{500, "100"},
	}

	var gotMax string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMax = r.URL.Query().Get("max_results")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	for _, tc := range cases {
		if _, err := c.SearchRecent(context.Background(), "$AAPL", tc.max); err != nil {
			t.Fatalf("unexpected error for max=%d: %v", tc.max, err)
		}
		if gotMax != tc.want {
			t.Fatalf("max=%d: expected max_results %s, got %s", tc.max, tc.want, gotMax)
		}
	}
}

func TestSearchRecentReturnsTexts(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"text":"to the moon"},{"text":""},{"text":"sell everything"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	texts, err := c.SearchRecent(context.Background(), "$TSLA lang:en -is:retweet", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "$TSLA lang:en -is:retweet" {
		t.Fatalf("query was rewritten: %q", gotQuery)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}
	if len(texts) != 2 || texts[0] != "to the moon" || texts[1] != "sell everything" {
		t.Fatalf("unexpected texts: %#v", texts)
	}
}
