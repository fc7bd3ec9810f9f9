// Command indexer builds a corpus generation from the document directory,
// persists it to the configured artifact store, and announces it so running
// searchers reload.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	dataDir := flag.String("data", "", "override corpus.dataDir")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Corpus.DataDir = *dataDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer",
		"data_dir", cfg.Corpus.DataDir,
		"backend", cfg.Corpus.ArtifactBackend,
		"selection", cfg.Selection.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := artifact.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open artifact store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	deps := indexer.ServiceDeps{
		Builder: indexer.NewBuilder(
			tokenizer.NewAnalyzer(tokenizer.Options{DomainStopwords: cfg.Corpus.DomainStopwords}),
			indexer.BuildOptionsFromConfig(cfg),
		),
		Source: loader.NewDirSource(cfg.Corpus.DataDir),
		Store:  backend.Store,
		Origin: "indexer-cli",
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
		defer producer.Close()
		deps.Publisher = producer
	}

	res, err := indexer.NewService(deps).Rebuild(ctx)
	if err != nil {
		slog.Error("indexing failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		slog.Error("failed to write result", "error", err)
		os.Exit(1)
	}
}
