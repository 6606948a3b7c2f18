// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"college-fit-workers/internal/common/aws"
	"college-fit-workers/internal/common/camunda"
	"college-fit-workers/internal/common/config"
	"college-fit-workers/internal/common/database"
	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/common/observability"
	"college-fit-workers/internal/engine"
	"college-fit-workers/internal/recommendation"
	"college-fit-workers/internal/store"

	ccf "college-fit-workers/internal/workers/recommendation/classify-college-fit"
	gcr "college-fit-workers/internal/workers/recommendation/generate-college-recommendations"
	gone "college-fit-workers/internal/workers/recommendation/get-college-recommendation"
	gall "college-fit-workers/internal/workers/recommendation/get-college-recommendations"
	grs "college-fit-workers/internal/workers/recommendation/get-recommendation-stats"
	icr "college-fit-workers/internal/workers/recommendation/invalidate-college-recommendations"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	boot := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("config load failed", zap.Error(err))
	}
	_ = boot.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("cacheBackend", cfg.Recommendation.CacheBackend),
		zap.String("catalogSource", cfg.Recommendation.CatalogSource),
	)

	obs := observability.New(cfg.App.Name, zapLog)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis (cache backend and profile read-through) ---
	var rdb *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			if cfg.Recommendation.CacheBackend == config.CacheBackendRedis {
				zapLog.Fatal("redis failed after retries", zap.Error(err))
			}
			zapLog.Warn("redis unavailable, profile caching disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Profile store ---
	var profiles recommendation.ProfileStore = store.NewPostgresProfileStore(pg.DB)
	if rdb != nil {
		profiles = store.NewCachedProfileStore(
			store.NewPostgresProfileStore(pg.DB), rdb.Client, cfg.Recommendation.ProfileCacheTTL, log,
		)
	}

	// --- Catalog ---
	var catalog recommendation.CatalogStore
	switch cfg.Recommendation.CatalogSource {
	case config.CatalogSourceElasticsearch:
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		exists, err := esClient.IndexExists(ctx, cfg.Recommendation.CatalogIndex)
		if err != nil {
			zapLog.Fatal("elasticsearch catalog check failed", zap.Error(err))
		}
		if !exists {
			zapLog.Fatal("catalog index not found", zap.String("index", cfg.Recommendation.CatalogIndex))
		}
		zapLog.Info("Elasticsearch connected successfully")
		catalog = store.NewElasticsearchCatalog(esClient.Client, cfg.Recommendation.CatalogIndex, cfg.Recommendation.CatalogPageSize)
	default:
		catalog = store.NewPostgresCatalog(pg.DB)
	}

	// --- Recommendation cache ---
	var cache recommendation.Cache
	switch cfg.Recommendation.CacheBackend {
	case config.CacheBackendRedis:
		// keys outlive the freshness window; staleness is judged on generated_at
		cache = recommendation.NewRedisCache(rdb.Client, cfg.Recommendation.FreshnessWindow+time.Hour)
	default:
		pgCache := recommendation.NewPostgresCache(pg.DB)
		if err := pgCache.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("failed to prepare recommendation cache table", zap.Error(err))
		}
		cache = pgCache
	}

	// --- Events ---
	var publisher recommendation.Publisher = recommendation.NopPublisher{}
	if cfg.Notifications.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}
		publisher = recommendation.NewSNSPublisher(snsClient, cfg.Notifications.SNS.TopicARN)
		zapLog.Info("Recommendation events enabled", zap.String("topicArn", cfg.Notifications.SNS.TopicARN))
	}

	// --- Engine and service ---
	eng, err := engine.New(recommendation.NewEngineConfig(cfg.Recommendation))
	if err != nil {
		zapLog.Fatal("invalid recommendation engine configuration", zap.Error(err))
	}

	service := recommendation.NewService(eng, profiles, catalog, cache, log, recommendation.Options{
		FreshnessWindow: cfg.Recommendation.FreshnessWindow,
		Publisher:       publisher,
		Backend:         cfg.Recommendation.CacheBackend,
		Observability:   obs,
	})

	// --- Workers ---
	handlers := []struct {
		taskType string
		handle   worker.JobHandler
	}{
		{gcr.TaskType, gcr.NewHandler(gcr.FromWorkerConfig(config.GetWorkerConfig(cfg, gcr.TaskType)), service, log).Handle},
		{gall.TaskType, gall.NewHandler(gall.FromWorkerConfig(config.GetWorkerConfig(cfg, gall.TaskType)), service, log).Handle},
		{grs.TaskType, grs.NewHandler(grs.FromWorkerConfig(config.GetWorkerConfig(cfg, grs.TaskType)), service, log).Handle},
		{gone.TaskType, gone.NewHandler(gone.FromWorkerConfig(config.GetWorkerConfig(cfg, gone.TaskType)), service, log).Handle},
		{icr.TaskType, icr.NewHandler(icr.FromWorkerConfig(config.GetWorkerConfig(cfg, icr.TaskType)), service, log).Handle},
		{ccf.TaskType, ccf.NewHandler(ccf.FromWorkerConfig(config.GetWorkerConfig(cfg, ccf.TaskType)), service, log).Handle},
	}

	var workers []worker.JobWorker
	for _, h := range handlers {
		if w := camunda.StartWorker(zeebe.GetClient(), h.taskType, config.GetWorkerConfig(cfg, h.taskType), h.handle, obs, zapLog); w != nil {
			workers = append(workers, w)
		}
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newHealthMux(zeebe, pg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Close()
	}
	for _, w := range workers {
		w.AwaitClose()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}
