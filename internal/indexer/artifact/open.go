package artifact

import (
	"context"
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/sqlite"
)

// Pruner is implemented by stores that keep more than one generation.
type Pruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// Backend is an opened Store with its health probe and cleanup.
type Backend struct {
	Name  string
	Store Store
	Ping  func(ctx context.Context) error
	Close func() error
}

// Open connects the store selected by cfg.Corpus.ArtifactBackend.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Corpus.ArtifactBackend {
	case config.BackendFile, "":
		dir := cfg.Corpus.ArtifactDir
		return &Backend{
			Name:  config.BackendFile,
			Store: NewFileStore(dir),
			Ping: func(context.Context) error {
				return os.MkdirAll(dir, 0755)
			},
			Close: func() error { return nil },
		}, nil

	case config.BackendPostgres:
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(ctx, client.DB, DialectPostgres)
		if err != nil {
			client.Close()
			return nil, err
		}
		return &Backend{Name: config.BackendPostgres, Store: store, Ping: client.Ping, Close: client.Close}, nil

	case config.BackendSQLite:
		client, err := sqlite.New(cfg.Corpus.SQLitePath)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(ctx, client.DB, DialectSQLite)
		if err != nil {
			client.Close()
			return nil, err
		}
		return &Backend{Name: config.BackendSQLite, Store: store, Ping: client.Ping, Close: client.Close}, nil

	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Corpus.ArtifactBackend)
	}
}
