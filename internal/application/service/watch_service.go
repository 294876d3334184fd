package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alexico1969/bkk-tracker/internal/application/selection"
	derr "github.com/Alexico1969/bkk-tracker/internal/domain/errors"
	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
	"github.com/Alexico1969/bkk-tracker/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Params configures one watch: the fixed route, the base dates with their
// flex window, and the constraints offers must satisfy.
type Params struct {
	Origin             string
	Destination        string
	DepartureDate      string
	ReturnDate         string
	FlexDays           int
	Cabin              string
	Adults             int
	Currency           string
	MaxResults         int
	Concurrency        int
	AllowInvertedPairs bool
	Rules              selection.Rules
	CacheTTL           time.Duration
}

// WatchService runs one fare watch end to end: date grid, token, bounded
// fan-out of searches, cheapest-of-cheapest reduction, report assembly.
type WatchService struct {
	log    *zap.Logger
	tokens ports.TokenSource
	offers ports.OfferSource
	cache  ports.ReportCache
	sink   ports.SummarySink
	params Params
}

func NewWatchService(log *zap.Logger, tokens ports.TokenSource, offers ports.OfferSource, cache ports.ReportCache, sink ports.SummarySink, params Params) *WatchService {
	if log == nil {
		log = zap.NewNop()
	}
	if params.Concurrency <= 0 {
		params.Concurrency = 3
	}

	return &WatchService{
		log:    log,
		tokens: tokens,
		offers: offers,
		cache:  cache,
		sink:   sink,
		params: params,
	}
}

// Run performs one invocation. Per-pair upstream failures are absorbed
// into that pair's result entry; only configuration and auth failures are
// fatal and abort the whole run. With refresh unset, a cached report for
// the same route and date grid is served when present.
func (s *WatchService) Run(ctx context.Context, refresh bool) (models.Report, error) {
	const op = "service.Run"
	tracer := otel.Tracer("bkk-tracker/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("watch.origin", s.params.Origin),
		attribute.String("watch.destination", s.params.Destination),
	)

	logger := s.log.With(
		zap.String("op", op),
		zap.String("origin", s.params.Origin),
		zap.String("destination", s.params.Destination),
	)

	cacheKey := s.cacheKey()
	if s.cache != nil && !refresh {
		cached, err := s.cache.GetReport(ctx, cacheKey)
		if err == nil {
			logger.Info("report cache hit")
			span.AddEvent("report.cache.hit")
			return cached, nil
		}
		if errors.Is(err, derr.ErrReportNotFound) {
			span.AddEvent("report.cache.miss")
		} else {
			logger.Warn("report cache read failed", zap.Error(err))
		}
	}

	pairs, err := BuildDatePairs(s.params.DepartureDate, s.params.ReturnDate, s.params.FlexDays, s.params.AllowInvertedPairs)
	if err != nil {
		logger.Error("failed to build date grid", zap.Error(err))
		span.SetStatus(otelcodes.Error, "invalid base dates")
		return models.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		logger.Error("failed to obtain bearer token", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "token exchange failed")
		return models.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	results := make([]models.SearchResult, len(pairs))
	forEachBounded(ctx, len(pairs), s.params.Concurrency, func(ctx context.Context, i int) {
		results[i] = s.searchPair(ctx, token, pairs[i])
	})

	// A cancelled invocation leaves undispatched grid slots behind; that
	// is not a partial success, so the whole run fails rather than
	// reporting (and caching) a truncated grid as ok.
	if err := ctx.Err(); err != nil {
		logger.Error("invocation cancelled mid-search", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "invocation cancelled")
		return models.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	best := reduceBest(results)

	report := models.Report{
		Status: models.StatusOK,
		Route: models.Route{
			Origin:      s.params.Origin,
			Destination: s.params.Destination,
		},
		Cabin: s.params.Cabin,
		Constraints: models.Constraints{
			MaxStops:             s.params.Rules.MaxStops,
			MaxHoursPerDirection: float64(s.params.Rules.MaxMinutes) / 60,
			Adults:               s.params.Adults,
			Currency:             s.params.Currency,
			BaseDepartureDate:    s.params.DepartureDate,
			BaseReturnDate:       s.params.ReturnDate,
			FlexDays:             s.params.FlexDays,
			PairCount:            len(pairs),
		},
		BestOffer:   best,
		Searches:    results,
		GeneratedAt: time.Now().UTC(),
	}

	if s.sink != nil {
		report.Webhook = s.forwardSummary(ctx, logger, report.GeneratedAt, best)
	}

	if s.cache != nil && s.params.CacheTTL > 0 {
		if err := s.cache.SetReport(ctx, cacheKey, report, s.params.CacheTTL); err != nil {
			logger.Warn("report cache write failed", zap.Error(err))
			span.RecordError(err)
		}
	}

	span.SetAttributes(attribute.Int("watch.pairs", len(pairs)))
	span.SetStatus(otelcodes.Ok, "ok")
	if best != nil {
		logger.Info("watch finished",
			zap.Int("pairs", len(pairs)),
			zap.Float64("best_price", best.Price),
			zap.String("best_departure", best.Pair.DepartureDate),
			zap.String("best_return", best.Pair.ReturnDate),
		)
	} else {
		logger.Info("watch finished with no qualifying offer", zap.Int("pairs", len(pairs)))
	}

	return report, nil
}

func (s *WatchService) searchPair(ctx context.Context, token string, pair models.DatePair) models.SearchResult {
	result := models.SearchResult{Pair: pair}

	offers, err := s.offers.SearchOffers(ctx, token, ports.FareQuery{
		Origin:        s.params.Origin,
		Destination:   s.params.Destination,
		DepartureDate: pair.DepartureDate,
		ReturnDate:    pair.ReturnDate,
		Adults:        s.params.Adults,
		TravelClass:   s.params.Cabin,
		CurrencyCode:  s.params.Currency,
		MaxResults:    s.params.MaxResults,
	})
	if err != nil {
		var upstream *derr.UpstreamError
		switch {
		case errors.As(err, &upstream):
			result.Status = upstream.StatusCode
			result.Error = upstream.Body
		case errors.Is(err, derr.ErrSearchTimeout):
			result.Error = derr.ErrSearchTimeout.Error()
		default:
			result.Error = err.Error()
		}
		s.log.Warn("pair search failed",
			zap.String("departure", pair.DepartureDate),
			zap.String("return", pair.ReturnDate),
			zap.Error(err),
		)
		return result
	}

	result.Offers = offers
	result.OffersTotal = len(offers)
	if cheapest, _, ok := selection.PickCheapest(offers, s.params.Rules); ok {
		result.Cheapest = &cheapest
	}
	return result
}

// reduceBest picks the minimum-price cheapest-valid across all pairs.
// First-seen wins on ties, so the result is stable in grid order.
func reduceBest(results []models.SearchResult) *models.BestOffer {
	var best *models.BestOffer

	for _, r := range results {
		if r.Cheapest == nil {
			continue
		}
		amount, ok := selection.Amount(r.Cheapest.Price)
		if !ok {
			continue
		}
		if best == nil || amount < best.Price {
			best = &models.BestOffer{
				Price:    amount,
				Currency: r.Cheapest.Price.Currency,
				Pair:     r.Pair,
				Offer:    *r.Cheapest,
			}
		}
	}

	return best
}

func (s *WatchService) forwardSummary(ctx context.Context, logger *zap.Logger, generatedAt time.Time, best *models.BestOffer) *models.WebhookResult {
	if err := s.sink.Send(ctx, generatedAt, best); err != nil {
		logger.Warn("summary webhook failed", zap.Error(err))
		return &models.WebhookResult{Delivered: false, Error: err.Error()}
	}
	return &models.WebhookResult{Delivered: true}
}

func (s *WatchService) cacheKey() string {
	return fmt.Sprintf("bkk-tracker:%s:%s:%s:%s:%d",
		s.params.Origin, s.params.Destination,
		s.params.DepartureDate, s.params.ReturnDate,
		s.params.FlexDays,
	)
}
