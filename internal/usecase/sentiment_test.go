package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"MarketPulse/internal/domain/models"
)

func labels(pairs ...models.SentimentLabel) []models.SentimentLabel { return pairs }

func TestScoreBestLabelAveraging(t *testing.T) {
	classifier := &fakeClassifier{dists: [][]models.SentimentLabel{
		labels(
			models.SentimentLabel{Label: "positive", Score: 0.9},
			models.SentimentLabel{Label: "negative", Score: 0.05},
		),
		labels(
			models.SentimentLabel{Label: "negative", Score: 0.6},
			models.SentimentLabel{Label: "positive", Score: 0.3},
		),
		labels(models.SentimentLabel{Label: "neutral", Score: 0.99}),
	}}
	uc := NewSentimentUseCase(classifier, testLogger(t), nopMetrics{})

	res := uc.Score(context.Background(), "AAPL", []string{"a", "b", "c"})
	if res.Unavailable {
		t.Fatalf("expected available result")
	}
	want := (0.9 - 0.6 + 0) / 3.0
	if math.Abs(res.Score-want) > 1e-9 {
		t.Fatalf("expected score %.4f, got %.4f", want, res.Score)
	}
}

func TestScoreEmptyBatchUsesNeutralSeed(t *testing.T) {
	classifier := &fakeClassifier{dists: [][]models.SentimentLabel{
		labels(models.SentimentLabel{Label: "neutral", Score: 0.8}),
	}}
	uc := NewSentimentUseCase(classifier, testLogger(t), nopMetrics{})

	res := uc.Score(context.Background(), "TSLA", nil)
	if res.Unavailable || res.Score != 0 {
		t.Fatalf("expected neutral score, got %+v", res)
	}
	if len(classifier.batches) != 1 || len(classifier.batches[0]) != 1 {
		t.Fatalf("expected one seeded input, got %+v", classifier.batches)
	}
	if classifier.batches[0][0] != "Outlook for TSLA." {
		t.Fatalf("unexpected seed text: %q", classifier.batches[0][0])
	}
}

func TestScoreClassifierFailure(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("model loading")}
	uc := NewSentimentUseCase(classifier, testLogger(t), nopMetrics{})

	res := uc.Score(context.Background(), "NVDA", []string{"text"})
	if !res.Unavailable {
		t.Fatalf("expected unavailable result")
	}
	if res.Score != 0 {
		t.Fatalf("unavailable score must be zero, got %v", res.Score)
	}
}

func TestScoreEmptyDistributions(t *testing.T) {
	uc := NewSentimentUseCase(&fakeClassifier{}, testLogger(t), nopMetrics{})
	res := uc.Score(context.Background(), "MSFT", []string{"text"})
	if !res.Unavailable || res.Score != 0 {
		t.Fatalf("expected unavailable zero score, got %+v", res)
	}

	uc = NewSentimentUseCase(&fakeClassifier{dists: [][]models.SentimentLabel{{}, {}}}, testLogger(t), nopMetrics{})
	res = uc.Score(context.Background(), "MSFT", []string{"text"})
	if !res.Unavailable {
		t.Fatalf("expected unavailable result for all-empty distributions, got %+v", res)
	}
}

func TestSignedScoreCaseInsensitive(t *testing.T) {
	if v := signedScore(models.SentimentLabel{Label: "Positive", Score: 0.7}); v != 0.7 {
		t.Fatalf("expected 0.7, got %v", v)
	}
	if v := signedScore(models.SentimentLabel{Label: "NEGATIVE", Score: 0.7}); v != -0.7 {
		t.Fatalf("expected -0.7, got %v", v)
	}
	if v := signedScore(models.SentimentLabel{Label: "mixed", Score: 0.7}); v != 0 {
		t.Fatalf("expected 0, got %v", v)
	}
}
