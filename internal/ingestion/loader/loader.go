// Package loader reads the corpus from a directory of plain-text files. The
// file name, extension included, is the document id.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
)

// DirSource serves documents from one directory.
type DirSource struct {
	dir    string
	logger *slog.Logger
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{
		dir:    dir,
		logger: logger.Component("corpus-loader", "dir", dir),
	}
}

func (s *DirSource) Dir() string {
	return s.dir
}

// Load reads every .txt file. A missing directory is an empty corpus.
func (s *DirSource) Load(ctx context.Context) (map[string]string, error) {
	docs, err := LoadDir(ctx, s.dir)
	if err != nil {
		return nil, err
	}
	s.logger.Info("corpus loaded", "documents", len(docs))
	return docs, nil
}

// Save writes body as docID into the directory, replacing any existing file.
func (s *DirSource) Save(docID, body string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(docID))
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(body), 0644); err != nil {
		return fmt.Errorf("writing document %s: %w", docID, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming document %s: %w", docID, err)
	}
	return nil
}

// LoadDir returns id -> text for every .txt file directly inside dir.
func LoadDir(ctx context.Context, dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), validator.TextExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make(map[string]string, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", name, err)
		}
		docs[name] = string(data)
	}
	return docs, nil
}
