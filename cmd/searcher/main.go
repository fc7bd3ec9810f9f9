// Command searcher serves search over the latest corpus generation. It loads
// persisted artifacts on startup, rebuilds on demand, and follows
// index-complete announcements from other replicas.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/tokenizer"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/herbal-search/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"data_dir", cfg.Corpus.DataDir,
		"backend", cfg.Corpus.ArtifactBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	backend, err := artifact.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open artifact store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	origin := replicaID()
	analyzer := tokenizer.NewAnalyzer(tokenizer.Options{DomainStopwords: cfg.Corpus.DomainStopwords})
	source := loader.NewDirSource(cfg.Corpus.DataDir)
	holder := corpus.NewHolder()
	deps := indexer.ServiceDeps{
		Builder: indexer.NewBuilder(analyzer, indexer.BuildOptionsFromConfig(cfg)),
		Source:  source,
		Holder:  holder,
		Store:   backend.Store,
		Metrics: m,
		Origin:  origin,
	}
	kafkaEnabled := len(cfg.Kafka.Brokers) > 0
	if kafkaEnabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
		defer producer.Close()
		deps.Publisher = producer
	}
	svc := indexer.NewService(deps)
	svc.OnSwap(func(ctx context.Context, prev, next *corpus.Generation) {
		if prev == nil {
			return
		}
		if _, err := queryCache.InvalidateGeneration(ctx, prev.ID); err != nil {
			slog.Warn("dropping cached results of previous generation failed", "generation", prev.ID, "error", err)
		}
	})

	if cfg.Corpus.LoadOnStartup {
		if _, err := svc.LoadLatest(ctx); err != nil {
			if errors.Is(err, apperrors.ErrArtifactNotFound) {
				slog.Warn("no persisted generation, search unavailable until a rebuild", "backend", backend.Name)
			} else {
				slog.Error("loading persisted generation failed, search unavailable until a rebuild", "error", err)
			}
		}
	}

	if kafkaEnabled {
		group := cfg.Kafka.ConsumerGroup + "-" + origin
		kc := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete, group,
			consumer.HandleIndexComplete(svc, origin))
		reloads := consumer.New(kc)
		go func() {
			if err := reloads.Start(ctx); err != nil {
				slog.Error("reload consumer error", "error", err)
			}
		}()
	}

	checker := health.NewChecker()
	checker.Register("corpus", func(ctx context.Context) health.ComponentHealth {
		gen := holder.Current()
		if gen == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no generation loaded"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("generation %s, %d documents", gen.ID, gen.Index.N),
		}
	})
	checker.Register("artifact_store", health.PingCheck(backend.Ping, false))
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping, false))
	}

	exec := executor.New(holder, analyzer, executor.OptionsFromConfig(cfg.Search))
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(metrics.ServerOptions{
			Port:    cfg.Metrics.Port,
			Service: "herbal-searcher " + origin,
			Status: func(ctx context.Context) (any, error) {
				return exec.Info()
			},
		})
		defer shutdownMetrics(context.Background())
	}
	mux := http.NewServeMux()
	handler.New(exec, queryCache, svc, m).Register(mux)
	ingesthandler.New(source).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if cfg.Server.AdminRateLimit > 0 {
		limiter := middleware.NewLimiter(cfg.Server.AdminRateLimit, time.Minute)
		go sweepLimiter(ctx, limiter)
		chain = middleware.RateLimit(limiter, "/api/v1/admin/")(chain)
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins))(chain)
	}
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr, "replica", origin)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// replicaID names this process in published events and in its private
// consumer group, so every replica sees every announcement.
func replicaID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "searcher"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func sweepLimiter(ctx context.Context, l *middleware.Limiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
