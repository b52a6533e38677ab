package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/logger"
)

const (
	priceAlertThreshold = 3.0
	priceHighThreshold  = 5.0
	sentimentSpikeLevel = 0.4
	alertSweepTimeout   = 30 * time.Second
	alertTextsPerSymbol = 10
)

// AlertUseCase sweeps the configured symbol universe and evaluates the
// price and sentiment threshold rules per symbol. The evaluator holds no
// cross-sweep state; every sweep starts from scratch.
type AlertUseCase struct {
	market    *MarketDataUseCase
	sentiment *SentimentUseCase
	texts     drepo.TextSource
	universe  []string
	l         *logger.Logger
	metrics   drepo.Metrics
}

func NewAlertUseCase(
	cfg *config.Config,
	market *MarketDataUseCase,
	sentiment *SentimentUseCase,
	texts drepo.TextSource,
	l *logger.Logger,
	metrics drepo.Metrics,
) *AlertUseCase {
	return &AlertUseCase{
		market:    market,
		sentiment: sentiment,
		texts:     texts,
		universe:  cfg.Alerts.Universe,
		l:         l,
		metrics:   metrics,
	}
}

// Sweep evaluates every universe symbol concurrently and joins the results
// in universe order, so repeated sweeps over identical data produce
// identical output. A symbol with no quote contributes nothing; a sentiment
// fetch failure suppresses only that symbol's spike rule.
func (uc *AlertUseCase) Sweep(ctx context.Context) []models.Alert {
	ctx, cancel := context.WithTimeout(ctx, alertSweepTimeout)
	defer cancel()

	start := time.Now()

	perSymbol := make([][]models.Alert, len(uc.universe))
	var wg sync.WaitGroup
	for i, sym := range uc.universe {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			perSymbol[i] = uc.evaluate(ctx, sym)
		}(i, sym)
	}
	wg.Wait()

	var alerts []models.Alert
	for _, batch := range perSymbol {
		alerts = append(alerts, batch...)
	}

	for i := range alerts {
		uc.metrics.RecordAlert(string(alerts[i].Kind), string(alerts[i].Severity))
	}
	uc.metrics.RecordLatency("alert_sweep", time.Since(start).Seconds())
	uc.l.Info("alert sweep finished",
		logger.Int("symbols", len(uc.universe)),
		logger.Int("alerts", len(alerts)))
	return alerts
}

// evaluate applies both threshold rules to one symbol.
func (uc *AlertUseCase) evaluate(ctx context.Context, symbol string) []models.Alert {
	quote := uc.market.GetQuote(ctx, symbol)
	if quote == nil {
		return nil
	}

	var alerts []models.Alert
	now := time.Now()

	// Price rule. Only percent-normalized changes are comparable to the
	// thresholds; an absolute price delta must not trip them.
	if quote.ChangeIsPercent && math.Abs(quote.Change) >= priceAlertThreshold {
		severity := models.SeverityMedium
		if math.Abs(quote.Change) >= priceHighThreshold {
			severity = models.SeverityHigh
		}
		alerts = append(alerts, models.Alert{
			ID:            models.AlertID(models.AlertPrice, symbol),
			Kind:          models.AlertPrice,
			Severity:      severity,
			Title:         "Price Movement Alert",
			Description:   fmt.Sprintf("%s moved %.2f%% in the last day", symbol, quote.Change),
			Symbol:        symbol,
			ChangePercent: quote.Change,
			CreatedAt:     now,
		})
	}

	// Sentiment rule.
	if uc.texts != nil {
		texts, err := uc.texts.SearchRecent(ctx, fmt.Sprintf("$%s lang:en -is:retweet", symbol), alertTextsPerSymbol)
		if err != nil {
			uc.l.Debug("alert text fetch failed",
				logger.String("symbol", symbol), logger.Error(err))
			return alerts
		}
		s := uc.sentiment.Score(ctx, symbol, capTexts(texts, maxSentimentTexts))
		if !s.Unavailable && math.Abs(s.Score) >= sentimentSpikeLevel {
			alerts = append(alerts, models.Alert{
				ID:          models.AlertID(models.AlertSentimentSpike, symbol),
				Kind:        models.AlertSentimentSpike,
				Severity:    models.SeverityHigh,
				Title:       "Sentiment Spike",
				Description: fmt.Sprintf("%s sentiment=%.2f", symbol, s.Score),
				Symbol:      symbol,
				Sentiment:   round2(s.Score),
				CreatedAt:   now,
			})
		}
	}

	return alerts
}
