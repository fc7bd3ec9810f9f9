package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
)

const manifestName = "manifest.json"

// FileStore keeps artifacts in a directory. Payloads are written under
// generation-specific names and the manifest is renamed into place last.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:    dir,
		logger: logger.Component("artifact-file-store"),
	}
}

func payloadName(generationID string, kind Kind) string {
	return fmt.Sprintf("%s-%s.json", kind, generationID)
}

func (s *FileStore) Save(ctx context.Context, b *Bundle) error {
	payloads, err := b.encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	for kind, data := range payloads {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeAtomic(filepath.Join(s.dir, payloadName(b.Manifest.GenerationID, kind)), data); err != nil {
			return err
		}
	}
	manifest, err := encodeManifest(b.Manifest)
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(s.dir, manifestName), manifest); err != nil {
		return err
	}
	s.prune(b.Manifest.GenerationID)
	s.logger.Info("artifacts saved",
		"dir", s.dir,
		"generation", b.Manifest.GenerationID,
		"documents", b.Manifest.Documents,
		"vocabulary", b.Manifest.Vocabulary,
	)
	return nil
}

func (s *FileStore) Load(ctx context.Context) (*Bundle, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, manifestName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no manifest in %s", apperrors.ErrArtifactNotFound, s.dir)
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := decodeManifest(data)
	if err != nil {
		return nil, err
	}
	payloads := make(map[Kind][]byte, len(m.Files))
	for kind := range m.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, payloadName(m.GenerationID, kind)))
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.Corruptf("%s: payload file missing", kind)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s artifact: %w", kind, err)
		}
		payloads[kind] = data
	}
	return decodeBundle(m, payloads)
}

// prune removes payload files of older generations. Failures are logged only;
// stale files never affect loading.
func (s *FileStore) prune(keep string) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("listing artifact directory failed", "error", err)
		return
	}
	suffix := "-" + keep + ".json"
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == manifestName || strings.HasSuffix(name, suffix) || !isPayloadName(name) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.logger.Warn("removing stale artifact failed", "file", name, "error", err)
		}
	}
}

func isPayloadName(name string) bool {
	for _, kind := range []Kind{KindIndex, KindIDF, KindFeatures} {
		if strings.HasPrefix(name, string(kind)+"-") && strings.HasSuffix(name, ".json") {
			return true
		}
	}
	return false
}

// writeAtomic writes data to a temp file, syncs it and renames it over path.
func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp artifact file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	f.Close()
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}
