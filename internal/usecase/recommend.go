package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

const (
	sentimentBuyThreshold  = 0.2
	sentimentSellThreshold = -0.2
	confidenceFloor        = 0.5
	confidenceCeil         = 0.95

	// maxSentimentTexts caps how many social snippets feed one score.
	maxSentimentTexts = 5
)

// RecommendUseCase combines one quote with one sentiment score through the
// deterministic decision rule.
type RecommendUseCase struct {
	market    *MarketDataUseCase
	sentiment *SentimentUseCase
	texts     drepo.TextSource
	l         *logger.Logger
	metrics   drepo.Metrics
	maxTexts  int
}

func NewRecommendUseCase(
	market *MarketDataUseCase,
	sentiment *SentimentUseCase,
	texts drepo.TextSource,
	l *logger.Logger,
	metrics drepo.Metrics,
) *RecommendUseCase {
	return &RecommendUseCase{
		market:    market,
		sentiment: sentiment,
		texts:     texts,
		l:         l,
		metrics:   metrics,
		maxTexts:  10,
	}
}

// Recommend produces a buy/sell/hold decision for symbol. The sentiment
// batch is seeded from the social text source: query overrides the default
// cashtag search when non-empty, and at most five snippets are kept. A
// fetch failure degrades to the neutral-seed path rather than failing the
// request. A symbol no provider knows still gets a recommendation: the
// quote defaults to price 0, change 0 and the decision rides on sentiment
// alone.
func (uc *RecommendUseCase) Recommend(ctx context.Context, symbol, query string) *models.Recommendation {
	start := time.Now()
	defer func() {
		uc.metrics.RecordLatency("recommend", time.Since(start).Seconds())
	}()

	quote := uc.market.GetQuote(ctx, symbol)
	if quote == nil {
		quote = &models.Quote{Symbol: strings.ToUpper(strings.TrimSpace(symbol))}
	}

	var texts []string
	if uc.texts != nil {
		if query == "" {
			query = fmt.Sprintf("$%s lang:en -is:retweet", quote.Symbol)
		}
		fetched, err := uc.texts.SearchRecent(ctx, query, uc.maxTexts)
		if err != nil {
			uc.l.Debug("social text fetch failed",
				logger.String("symbol", quote.Symbol), logger.Error(err))
		} else {
			texts = capTexts(fetched, maxSentimentTexts)
		}
	}

	s := uc.sentiment.Score(ctx, quote.Symbol, texts)
	return Decide(quote, s)
}

func capTexts(texts []string, limit int) []string {
	if len(texts) > limit {
		return texts[:limit]
	}
	return texts
}

// Decide applies the decision rule. Confidence starts at |sentiment|, gains
// 0.1 when any price movement corroborates, and is clamped to
// [0.5, 0.95]. An unavailable sentiment scores exactly like a neutral one.
func Decide(quote *models.Quote, s models.SentimentResult) *models.Recommendation {
	confidence := math.Abs(s.Score)
	if quote.Change != 0 {
		confidence += 0.1
	}
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}
	if confidence > confidenceCeil {
		confidence = confidenceCeil
	}

	action := models.ActionHold
	switch {
	case s.Score > sentimentBuyThreshold && quote.Change >= 0:
		action = models.ActionBuy
	case s.Score < sentimentSellThreshold && quote.Change <= 0:
		action = models.ActionSell
	}

	return &models.Recommendation{
		Symbol:     quote.Symbol,
		Action:     action,
		Confidence: round2(confidence),
		Sentiment:  round2(s.Score),
		Price:      quote.Price,
		Reasoning:  fmt.Sprintf("Sentiment=%.2f, price change=%.2f.", s.Score, quote.Change),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
