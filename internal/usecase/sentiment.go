package usecase

import (
	"context"
	"fmt"
	"strings"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

// SentimentUseCase reduces classifier label distributions into one polarity
// score per batch.
type SentimentUseCase struct {
	classifier drepo.SentimentClassifier
	l          *logger.Logger
	metrics    drepo.Metrics
}

func NewSentimentUseCase(classifier drepo.SentimentClassifier, l *logger.Logger, metrics drepo.Metrics) *SentimentUseCase {
	return &SentimentUseCase{classifier: classifier, l: l, metrics: metrics}
}

// Score classifies texts and reduces the result to one signed score in
// [-1, 1]. An empty batch is replaced with a neutral seed sentence for the
// symbol, so "no texts" and "explicitly neutral text" take the same path.
// Classifier failure yields a zero score flagged Unavailable; the numeric
// value is identical to genuine neutrality on purpose.
func (uc *SentimentUseCase) Score(ctx context.Context, symbol string, texts []string) models.SentimentResult {
	if len(texts) == 0 {
		texts = []string{fmt.Sprintf("Outlook for %s.", symbol)}
	}

	dists, err := uc.classifier.Classify(ctx, texts)
	if err != nil || len(dists) == 0 {
		if err != nil {
			uc.l.Warn("sentiment classifier unavailable",
				logger.String("symbol", symbol), logger.Error(err))
			uc.metrics.RecordError("sentiment_classify")
		}
		return models.SentimentResult{Score: 0, Unavailable: true}
	}

	var sum float64
	var n int
	for _, dist := range dists {
		if len(dist) == 0 {
			continue
		}
		best := dist[0]
		for _, l := range dist[1:] {
			if l.Score > best.Score {
				best = l
			}
		}
		sum += signedScore(best)
		n++
	}
	if n == 0 {
		return models.SentimentResult{Score: 0, Unavailable: true}
	}
	return models.SentimentResult{Score: sum / float64(n)}
}

// signedScore maps one winning label to a signed contribution: positive
// labels count +score, negative labels -score, anything else zero.
func signedScore(l models.SentimentLabel) float64 {
	switch strings.ToLower(l.Label) {
	case "positive":
		return l.Score
	case "negative":
		return -l.Score
	default:
		return 0
	}
}
