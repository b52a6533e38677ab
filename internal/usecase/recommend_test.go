package usecase

import (
	"context"
	"errors"
	"testing"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/config"
)

func TestDecideActionBoundaries(t *testing.T) {
	cases := []struct {
		name      string
		sentiment float64
		change    float64
		want      models.Action
	}{
		{"buy on positive sentiment and flat price", 0.21, 0, models.ActionBuy},
		{"buy on positive sentiment and rising price", 0.5, 2.1, models.ActionBuy},
		{"threshold itself does not buy", 0.2, 1, models.ActionHold},
		{"positive sentiment against falling price holds", 0.5, -1.2, models.ActionHold},
		{"sell on negative sentiment and flat price", -0.21, 0, models.ActionSell},
		{"sell on negative sentiment and falling price", -0.6, -3, models.ActionSell},
		{"threshold itself does not sell", -0.2, -1, models.ActionHold},
		{"negative sentiment against rising price holds", -0.6, 2, models.ActionHold},
		{"weak sentiment holds regardless of movement", 0.05, 5, models.ActionHold},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote := stockQuote("AAPL", 191, tc.change)
			rec := Decide(quote, models.SentimentResult{Score: tc.sentiment})
			if rec.Action != tc.want {
				t.Fatalf("sentiment=%v change=%v: expected %q, got %q",
					tc.sentiment, tc.change, tc.want, rec.Action)
			}
		})
	}
}

func TestDecideConfidenceBounds(t *testing.T) {
	// Weak signal is floored at 0.5.
	rec := Decide(stockQuote("AAPL", 191, 0), models.SentimentResult{Score: 0.1})
	if rec.Confidence != 0.5 {
		t.Fatalf("expected floor 0.5, got %v", rec.Confidence)
	}

	// Strong corroborated signal is capped at 0.95.
	rec = Decide(stockQuote("AAPL", 191, 8.0), models.SentimentResult{Score: 1.0})
	if rec.Confidence != 0.95 {
		t.Fatalf("expected ceiling 0.95, got %v", rec.Confidence)
	}

	// Price movement adds 0.1 regardless of direction.
	rec = Decide(stockQuote("AAPL", 191, -1.0), models.SentimentResult{Score: 0.6})
	if rec.Confidence != 0.7 {
		t.Fatalf("expected 0.7, got %v", rec.Confidence)
	}
	rec = Decide(stockQuote("AAPL", 191, 0), models.SentimentResult{Score: 0.6})
	if rec.Confidence != 0.6 {
		t.Fatalf("expected 0.6 without movement, got %v", rec.Confidence)
	}
}

func TestDecideUnavailableSentimentMatchesNeutral(t *testing.T) {
	quote := stockQuote("AAPL", 191, 1.5)
	neutral := Decide(quote, models.SentimentResult{Score: 0})
	degraded := Decide(quote, models.SentimentResult{Score: 0, Unavailable: true})
	if *neutral != *degraded {
		t.Fatalf("degraded path diverged: %+v vs %+v", neutral, degraded)
	}
	if neutral.Action != models.ActionHold {
		t.Fatalf("expected hold, got %q", neutral.Action)
	}
}

func TestDecideOutputFields(t *testing.T) {
	rec := Decide(stockQuote("TSLA", 180.5, 2.25), models.SentimentResult{Score: 0.456})
	if rec.Symbol != "TSLA" || rec.Price != 180.5 {
		t.Fatalf("unexpected quote fields: %+v", rec)
	}
	if rec.Sentiment != 0.46 {
		t.Fatalf("expected rounded sentiment 0.46, got %v", rec.Sentiment)
	}
	if rec.Confidence != 0.56 {
		t.Fatalf("expected rounded confidence 0.56, got %v", rec.Confidence)
	}
	if rec.Reasoning != "Sentiment=0.46, price change=2.25." {
		t.Fatalf("unexpected reasoning: %q", rec.Reasoning)
	}
}

func TestRecommendUnknownSymbolRidesOnSentiment(t *testing.T) {
	texts := &fakeTexts{texts: []string{"huge upside"}}
	classifier := &fakeClassifier{dists: [][]models.SentimentLabel{
		labels(models.SentimentLabel{Label: "positive", Score: 0.9}),
	}}
	uc := NewRecommendUseCase(
		newMarketUC(&config.Config{}, &fakeProfiles{}, &fakeProvider{class: models.AssetStock}),
		NewSentimentUseCase(classifier, testLogger(t), nopMetrics{}),
		texts, testLogger(t), nopMetrics{})

	rec := uc.Recommend(context.Background(), " zzzz ", "")
	if rec == nil {
		t.Fatalf("unknown symbol must still get a recommendation")
	}
	if rec.Symbol != "ZZZZ" {
		t.Fatalf("expected symbol ZZZZ, got %q", rec.Symbol)
	}
	if rec.Price != 0 {
		t.Fatalf("expected zero price for unknown symbol, got %v", rec.Price)
	}
	if rec.Action != models.ActionBuy {
		t.Fatalf("positive sentiment with zero change should buy, got %q", rec.Action)
	}
	if len(texts.queries) != 1 || texts.queries[0] != "$ZZZZ lang:en -is:retweet" {
		t.Fatalf("unexpected search query: %+v", texts.queries)
	}
}

func TestRecommendIdempotent(t *testing.T) {
	market := newMarketUC(&config.Config{}, &fakeProfiles{}, &fakeProvider{
		class:  models.AssetStock,
		quotes: map[string]*models.Quote{"AAPL": stockQuote("AAPL", 191.45, 1.23)},
	})
	uc := NewRecommendUseCase(market,
		NewSentimentUseCase(&fakeClassifier{dists: [][]models.SentimentLabel{
			labels(models.SentimentLabel{Label: "positive", Score: 0.63}),
		}}, testLogger(t), nopMetrics{}),
		&fakeTexts{texts: []string{"solid quarter", "guidance raised"}},
		testLogger(t), nopMetrics{})

	first := uc.Recommend(context.Background(), "AAPL", "")
	second := uc.Recommend(context.Background(), "AAPL", "")
	if first == nil || second == nil {
		t.Fatalf("expected recommendations, got %v and %v", first, second)
	}
	if *first != *second {
		t.Fatalf("identical inputs diverged:\n%+v\n%+v", first, second)
	}
}

func TestRecommendDefaultQuery(t *testing.T) {
	market := newMarketUC(&config.Config{}, &fakeProfiles{}, &fakeProvider{
		class:  models.AssetStock,
		quotes: map[string]*models.Quote{"AAPL": stockQuote("AAPL", 191, 1)},
	})
	texts := &fakeTexts{texts: []string{"one", "two", "three", "four", "five", "six", "seven"}}
	classifier := &fakeClassifier{dists: [][]models.SentimentLabel{
		labels(models.SentimentLabel{Label: "positive", Score: 0.9}),
	}}
	uc := NewRecommendUseCase(market,
		NewSentimentUseCase(classifier, testLogger(t), nopMetrics{}),
		texts, testLogger(t), nopMetrics{})

	rec := uc.Recommend(context.Background(), "aapl", "")
	if rec == nil {
		t.Fatalf("expected recommendation")
	}
	if len(texts.queries) != 1 || texts.queries[0] != "$AAPL lang:en -is:retweet" {
		t.Fatalf("unexpected search query: %+v", texts.queries)
	}
	// Only the first five snippets feed the classifier.
	if len(classifier.batches) != 1 || len(classifier.batches[0]) != 5 {
		t.Fatalf("expected 5 classifier inputs, got %+v", classifier.batches)
	}
}

func TestRecommendCustomQuery(t *testing.T) {
	market := newMarketUC(&config.Config{}, &fakeProfiles{}, &fakeProvider{
		class:  models.AssetStock,
		quotes: map[string]*models.Quote{"AAPL": stockQuote("AAPL", 191, 1)},
	})
	texts := &fakeTexts{texts: []string{"bullish"}}
	uc := NewRecommendUseCase(market,
		NewSentimentUseCase(&fakeClassifier{dists: [][]models.SentimentLabel{
			labels(models.SentimentLabel{Label: "positive", Score: 0.8}),
		}}, testLogger(t), nopMetrics{}),
		texts, testLogger(t), nopMetrics{})

	rec := uc.Recommend(context.Background(), "AAPL", "apple earnings")
	if rec == nil || rec.Action != models.ActionBuy {
		t.Fatalf("expected buy, got %+v", rec)
	}
	if texts.queries[0] != "apple earnings" {
		t.Fatalf("custom query was rewritten: %q", texts.queries[0])
	}
}

func TestRecommendTextFetchFailureDegrades(t *testing.T) {
	market := newMarketUC(&config.Config{}, &fakeProfiles{}, &fakeProvider{
		class:  models.AssetStock,
		quotes: map[string]*models.Quote{"AAPL": stockQuote("AAPL", 191, 1)},
	})
	classifier := &fakeClassifier{dists: [][]models.SentimentLabel{
		labels(models.SentimentLabel{Label: "neutral", Score: 0.9}),
	}}
	uc := NewRecommendUseCase(market,
		NewSentimentUseCase(classifier, testLogger(t), nopMetrics{}),
		&fakeTexts{err: errors.New("rate limited")}, testLogger(t), nopMetrics{})

	rec := uc.Recommend(context.Background(), "AAPL", "")
	if rec == nil || rec.Action != models.ActionHold {
		t.Fatalf("expected hold via neutral seed, got %+v", rec)
	}
	// The classifier still runs, fed by the synthetic seed.
	if len(classifier.batches) != 1 || classifier.batches[0][0] != "Outlook for AAPL." {
		t.Fatalf("expected seeded classification, got %+v", classifier.batches)
	}
}
