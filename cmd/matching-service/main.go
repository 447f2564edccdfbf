package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/shiftmatch/internal/cache"
	"github.com/md-rashed-zaman/shiftmatch/internal/config"
	"github.com/md-rashed-zaman/shiftmatch/internal/consumer"
	"github.com/md-rashed-zaman/shiftmatch/internal/db"
	"github.com/md-rashed-zaman/shiftmatch/internal/handlers"
	"github.com/md-rashed-zaman/shiftmatch/internal/httpx"
	"github.com/md-rashed-zaman/shiftmatch/internal/kafkax"
	"github.com/md-rashed-zaman/shiftmatch/internal/matching"
	"github.com/md-rashed-zaman/shiftmatch/internal/otelx"
	"github.com/md-rashed-zaman/shiftmatch/internal/runtime"
	"github.com/md-rashed-zaman/shiftmatch/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "matching-service")
	port, err := config.Port("PORT", "8086")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewScheduleRepository(pool, logger)
	matcher := matching.NewMatcher(repo, logger)

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}

	var matchCache *cache.MatchCache
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		matchCache = cache.NewMatchCache(rdb, config.Minutes("MATCH_CACHE_TTL_MINUTES", 5*time.Minute), logger)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: cache.ReadyCheck(rdb)})
	} else {
		logger.Info("redis not configured, match results are not cached")
	}

	brokers := config.String("KAFKA_BROKERS", "")
	topic := config.String("KAFKA_CONSUME_TOPIC", "scheduling.shift.changed.v1")
	if brokers != "" && matchCache != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
		shiftConsumer := consumer.New(logger, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", "matching-service"),
			Topic:   topic,
		}, func(ctx context.Context, msg kafka.Message) error {
			// Shift writes happening in other services invalidate our
			// cached match results for the days the shift covers.
			var payload struct {
				ShiftID     string `json:"shift_id"`
				CandidateID string `json:"candidate_id"`
				StartTime   string `json:"start_time"`
				EndTime     string `json:"end_time"`
			}
			if err := json.Unmarshal(msg.Value, &payload); err != nil {
				logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
				return nil
			}
			start, err := time.Parse(time.RFC3339, payload.StartTime)
			if err != nil {
				logger.Error("invalid event start_time", "topic", msg.Topic, "shift_id", payload.ShiftID)
				return nil
			}
			end, err := time.Parse(time.RFC3339, payload.EndTime)
			if err != nil || !start.Before(end) {
				logger.Error("invalid event end_time", "topic", msg.Topic, "shift_id", payload.ShiftID)
				return nil
			}
			matchCache.InvalidateRange(ctx, start, end)
			logger.Debug("shift change applied to cache", "shift_id", payload.ShiftID, "candidate_id", payload.CandidateID)
			return nil
		})
		go shiftConsumer.Run(ctx)
	} else if strings.TrimSpace(brokers) == "" {
		logger.Info("kafka not configured, shift-change events are not consumed")
	}

	matchingHandler := handlers.NewMatchingHandler(matcher, matchCache, logger)
	scheduleHandler := handlers.NewScheduleHandler(repo, matchCache, logger)

	mux := runtime.NewBaseMux(checks...)
	mux.HandleFunc("/api/v1/matching/candidates", matchingHandler.Candidates)
	mux.HandleFunc("/api/v1/availabilities", scheduleHandler.CreateAvailability)
	mux.HandleFunc("/api/v1/shifts", scheduleHandler.CreateShift)
	mux.HandleFunc("/api/v1/shifts/cancel", scheduleHandler.CancelShift)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "matching")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
