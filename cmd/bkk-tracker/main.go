package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Alexico1969/bkk-tracker/internal/api/http/handlers"
	"github.com/Alexico1969/bkk-tracker/internal/application/selection"
	"github.com/Alexico1969/bkk-tracker/internal/application/service"
	"github.com/Alexico1969/bkk-tracker/internal/config"
	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
	"github.com/Alexico1969/bkk-tracker/internal/domain/ports"
	amadeus "github.com/Alexico1969/bkk-tracker/internal/infrastructures/amadeus/http/client"
	cacheredis "github.com/Alexico1969/bkk-tracker/internal/infrastructures/db/redis"
	"github.com/Alexico1969/bkk-tracker/internal/infrastructures/db/tracing"
	"github.com/Alexico1969/bkk-tracker/internal/infrastructures/sheets"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load(".env")

	once := flag.Bool("once", false, "run a single fare watch, print the summary and exit")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	tp, err := tracing.InitTracer("bkk-tracker", cfg.Jaeger)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	svc, cleanup := buildWatchService(cfg, log)
	defer cleanup()

	if *once {
		runOnce(svc, cfg)
		return
	}

	serve(cfg, log, svc)
}

func buildWatchService(cfg *config.Config, log *zap.Logger) (*service.WatchService, func()) {
	host := cfg.Amadeus.Host()
	tokens := amadeus.NewTokenClient(host, cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret, cfg.Amadeus.Timeout, cfg.Amadeus.TokenExpirySkew)
	offers := amadeus.NewClient(host, cfg.Amadeus.Timeout, cfg.Amadeus.MaxRetries, cfg.Amadeus.RetryAfterCap, cfg.Amadeus.RequestsPerSecond, cfg.Amadeus.Burst)

	cleanup := func() {}
	var cache *cacheredis.ReportCacheRepository
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = cacheredis.NewReportCacheRepository(redisClient)
		cleanup = func() {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis client", zap.Error(err))
			}
		}
	}

	var sink *sheets.WebhookClient
	if strings.TrimSpace(cfg.Webhook.URL) != "" {
		sink = sheets.NewWebhookClient(cfg.Webhook.URL, cfg.Webhook.Secret, cfg.Webhook.Timeout)
	}

	params := service.Params{
		Origin:             cfg.Watch.Origin,
		Destination:        cfg.Watch.Destination,
		DepartureDate:      cfg.Watch.DepartureDate,
		ReturnDate:         cfg.Watch.ReturnDate,
		FlexDays:           cfg.Watch.FlexDays,
		Cabin:              cfg.Watch.Cabin,
		Adults:             cfg.Watch.Adults,
		Currency:           cfg.Watch.Currency,
		MaxResults:         cfg.Watch.MaxResults,
		Concurrency:        cfg.Watch.Concurrency,
		AllowInvertedPairs: cfg.Watch.AllowInvertedPairs,
		Rules: selection.Rules{
			MaxStops:            cfg.Watch.MaxStops,
			MaxMinutes:          cfg.Watch.MaxMinutes,
			DurationBoundStrict: cfg.Watch.DurationBoundStrict,
			Cabin:               cfg.Watch.Cabin,
			TrustUpstreamCabin:  cfg.Watch.TrustUpstreamCabin,
		},
		CacheTTL: cfg.ReportCacheTTL,
	}

	return service.NewWatchService(log, tokens, offers, cachePort(cache), sinkPort(sink), params), cleanup
}

// cachePort and sinkPort keep a nil repository from turning into a
// non-nil interface value.
func cachePort(c *cacheredis.ReportCacheRepository) ports.ReportCache {
	if c == nil {
		return nil
	}
	return c
}

func sinkPort(s *sheets.WebhookClient) ports.SummarySink {
	if s == nil {
		return nil
	}
	return s
}

func serve(cfg *config.Config, log *zap.Logger, svc *service.WatchService) {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info("bkk-tracker starting", zap.String("http_addr", addr))

	faresHandler := handlers.NewFaresHandler(log, svc, cfg.HTTP.RequestTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.HandleFunc("/v1/fares/report", faresHandler.GetReport)

	server := &http.Server{
		Addr:         addr,
		Handler:      loggingMiddleware(log, mux),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error("http server stopped", zap.Error(err))
		}
	}
}

func runOnce(svc *service.WatchService, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.RequestTimeout)
	defer cancel()

	report, err := svc.Run(ctx, true)
	if err != nil {
		color.Red("fare watch failed: %v", err)
		os.Exit(1)
	}

	bold := color.New(color.Bold)
	bold.Printf("%s -> %s (%s), %s to %s +/- %dd\n",
		report.Route.Origin, report.Route.Destination, report.Cabin,
		report.Constraints.BaseDepartureDate, report.Constraints.BaseReturnDate,
		report.Constraints.FlexDays,
	)

	for _, r := range report.Searches {
		label := fmt.Sprintf("%s / %s", r.Pair.DepartureDate, r.Pair.ReturnDate)
		switch {
		case r.Error != "":
			color.Red("  %s  failed (%d): %s", label, r.Status, r.Error)
		case r.Cheapest == nil:
			color.Yellow("  %s  %d offers, none qualifying", label, r.OffersTotal)
		default:
			fmt.Printf("  %s  %d offers, cheapest %s %s\n", label, r.OffersTotal, r.Cheapest.Price.Currency, bestAmount(r))
		}
	}

	if report.BestOffer != nil {
		color.Green("best: %s %.2f on %s / %s",
			report.BestOffer.Currency, report.BestOffer.Price,
			report.BestOffer.Pair.DepartureDate, report.BestOffer.Pair.ReturnDate,
		)
	} else {
		color.Yellow("no qualifying offer found")
	}
}

func bestAmount(r models.SearchResult) string {
	if r.Cheapest.Price.GrandTotal != "" {
		return r.Cheapest.Price.GrandTotal
	}
	return r.Cheapest.Price.Total
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func loggingMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func setupLogger(level string) *zap.Logger {
	zapLevel := parseLogLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
