package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/postgres"
)

// Dialect selects placeholder syntax for SQLStore.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

const schema = `
CREATE TABLE IF NOT EXISTS corpus_generations (
	generation_id TEXT PRIMARY KEY,
	manifest      TEXT NOT NULL,
	created_at    BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS corpus_artifacts (
	generation_id TEXT NOT NULL,
	kind          TEXT NOT NULL,
	payload       TEXT NOT NULL,
	PRIMARY KEY (generation_id, kind)
);
`

// SQLStore keeps generations in two tables. Each Save is one transaction,
// and Load reads the most recently saved generation.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewSQLStore creates the tables if they do not exist.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating artifact tables: %w", err)
		}
	}
	return &SQLStore{
		db:      db,
		dialect: dialect,
		logger:  logger.Component("artifact-sql-store"),
	}, nil
}

// rebind rewrites '?' placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Save(ctx context.Context, b *Bundle) error {
	payloads, err := b.encode()
	if err != nil {
		return err
	}
	manifest, err := encodeManifest(b.Manifest)
	if err != nil {
		return err
	}
	id := b.Manifest.GenerationID
	err = postgres.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM corpus_artifacts WHERE generation_id = ?`), id); err != nil {
			return fmt.Errorf("clearing artifacts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM corpus_generations WHERE generation_id = ?`), id); err != nil {
			return fmt.Errorf("clearing generation: %w", err)
		}
		for kind, data := range payloads {
			if _, err := tx.ExecContext(ctx,
				s.rebind(`INSERT INTO corpus_artifacts (generation_id, kind, payload) VALUES (?, ?, ?)`),
				id, string(kind), string(data),
			); err != nil {
				return fmt.Errorf("inserting %s artifact: %w", kind, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			s.rebind(`INSERT INTO corpus_generations (generation_id, manifest, created_at) VALUES (?, ?, ?)`),
			id, string(manifest), time.Now().UnixNano(),
		); err != nil {
			return fmt.Errorf("inserting generation: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving generation %s: %w", id, err)
	}
	s.logger.Info("artifacts saved",
		"generation", id,
		"documents", b.Manifest.Documents,
		"vocabulary", b.Manifest.Vocabulary,
	)
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (*Bundle, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT manifest FROM corpus_generations ORDER BY created_at DESC LIMIT 1`,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no saved generation", apperrors.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest generation: %w", err)
	}
	m, err := decodeManifest([]byte(raw))
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT kind, payload FROM corpus_artifacts WHERE generation_id = ?`), m.GenerationID)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()
	payloads := make(map[Kind][]byte, len(m.Files))
	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		payloads[Kind(kind)] = []byte(payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}
	return decodeBundle(m, payloads)
}

// Prune deletes every generation except the newest keep.
func (s *SQLStore) Prune(ctx context.Context, keep int) (int64, error) {
	var removed int64
	err := postgres.InTx(ctx, s.db, func(tx *sql.Tx) error {
		// SQLite needs a LIMIT before OFFSET; -1 means unbounded.
		query := `SELECT generation_id FROM corpus_generations ORDER BY created_at DESC LIMIT -1 OFFSET ?`
		if s.dialect == DialectPostgres {
			query = `SELECT generation_id FROM corpus_generations ORDER BY created_at DESC OFFSET ?`
		}
		rows, err := tx.QueryContext(ctx, s.rebind(query), keep)
		if err != nil {
			return fmt.Errorf("listing old generations: %w", err)
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM corpus_artifacts WHERE generation_id = ?`), id); err != nil {
				return fmt.Errorf("deleting artifacts of %s: %w", id, err)
			}
			res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM corpus_generations WHERE generation_id = ?`), id)
			if err != nil {
				return fmt.Errorf("deleting generation %s: %w", id, err)
			}
			n, _ := res.RowsAffected()
			removed += n
		}
		return nil
	})
	return removed, err
}
