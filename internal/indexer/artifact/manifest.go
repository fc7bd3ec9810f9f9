package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/selection"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
)

const FormatVersion = 1

// FileInfo describes one stored payload.
type FileInfo struct {
	Checksum uint32 `json:"crc32"`
	Size     int    `json:"size"`
}

// Manifest ties the artifacts of one generation together. It is written last,
// so a reader either sees a complete generation or the previous one.
type Manifest struct {
	Version          int               `json:"version"`
	GenerationID     string            `json:"generation_id"`
	BuiltAt          time.Time         `json:"built_at"`
	Smooth           bool              `json:"smooth_idf"`
	IndexFingerprint string            `json:"index_fingerprint"`
	Documents        int               `json:"documents"`
	Vocabulary       int               `json:"vocabulary"`
	Files            map[Kind]FileInfo `json:"files"`
}

// Bundle is a generation in its persisted shape.
type Bundle struct {
	Manifest  Manifest
	Index     *index.InvertedIndex
	IDF       ranker.IDFTable
	Selection *selection.Selection
}

// Store saves and loads the latest generation. Load returns an error
// wrapping ErrArtifactNotFound when nothing has been saved yet.
type Store interface {
	Save(ctx context.Context, b *Bundle) error
	Load(ctx context.Context) (*Bundle, error)
}

// FromGeneration prepares g for saving.
func FromGeneration(g *corpus.Generation) (*Bundle, error) {
	fp, err := corpus.Fingerprint(g.Index)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Manifest: Manifest{
			Version:          FormatVersion,
			GenerationID:     g.ID,
			BuiltAt:          g.BuiltAt,
			Smooth:           g.Smooth,
			IndexFingerprint: fp,
			Documents:        g.Index.N,
			Vocabulary:       len(g.Index.Postings),
		},
		Index:     g.Index,
		IDF:       g.IDF,
		Selection: g.Selection,
	}, nil
}

// Generation rebuilds a corpus generation from b, attaching texts for
// summaries. The IDF table must still match the index.
func (b *Bundle) Generation(texts map[string]string) (*corpus.Generation, error) {
	return corpus.NewGeneration(corpus.Params{
		ID:        b.Manifest.GenerationID,
		BuiltAt:   b.Manifest.BuiltAt,
		Index:     b.Index,
		IDF:       b.IDF,
		Smooth:    b.Manifest.Smooth,
		Selection: b.Selection,
		Texts:     texts,
	})
}

// encode serializes every payload of b and fills in the manifest file table.
func (b *Bundle) encode() (map[Kind][]byte, error) {
	payloads := make(map[Kind][]byte, 3)
	var err error
	if payloads[KindIndex], err = EncodeIndex(b.Index); err != nil {
		return nil, err
	}
	if payloads[KindIDF], err = EncodeIDF(b.IDF); err != nil {
		return nil, err
	}
	if b.Selection != nil {
		if payloads[KindFeatures], err = EncodeSelection(b.Selection); err != nil {
			return nil, err
		}
	}
	b.Manifest.Version = FormatVersion
	b.Manifest.Files = make(map[Kind]FileInfo, len(payloads))
	for kind, data := range payloads {
		b.Manifest.Files[kind] = FileInfo{Checksum: crc32.ChecksumIEEE(data), Size: len(data)}
	}
	return payloads, nil
}

func encodeManifest(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

func decodeManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, apperrors.Corruptf("manifest: %v", err)
	}
	if m.Version != FormatVersion {
		return Manifest{}, apperrors.Corruptf("manifest: unsupported version %d", m.Version)
	}
	if m.GenerationID == "" || m.IndexFingerprint == "" {
		return Manifest{}, apperrors.Corruptf("manifest: missing generation id or fingerprint")
	}
	if _, ok := m.Files[KindIndex]; !ok {
		return Manifest{}, apperrors.Corruptf("manifest: no index entry")
	}
	if _, ok := m.Files[KindIDF]; !ok {
		return Manifest{}, apperrors.Corruptf("manifest: no idf entry")
	}
	return m, nil
}

// decodeBundle checks every payload against the manifest before decoding.
func decodeBundle(m Manifest, payloads map[Kind][]byte) (*Bundle, error) {
	for kind, info := range m.Files {
		data, ok := payloads[kind]
		if !ok {
			return nil, apperrors.Corruptf("%s: payload missing", kind)
		}
		if len(data) != info.Size || crc32.ChecksumIEEE(data) != info.Checksum {
			return nil, apperrors.Corruptf("%s: checksum mismatch", kind)
		}
	}
	ix, err := DecodeIndex(payloads[KindIndex])
	if err != nil {
		return nil, err
	}
	fp, err := corpus.Fingerprint(ix)
	if err != nil {
		return nil, err
	}
	if fp != m.IndexFingerprint {
		return nil, fmt.Errorf("%w: index fingerprint %s, manifest expects %s",
			apperrors.ErrGenerationMismatch, fp[:12], shortFP(m.IndexFingerprint))
	}
	idf, err := DecodeIDF(payloads[KindIDF])
	if err != nil {
		return nil, err
	}
	b := &Bundle{Manifest: m, Index: ix, IDF: idf}
	if _, ok := m.Files[KindFeatures]; ok {
		if b.Selection, err = DecodeSelection(payloads[KindFeatures]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func shortFP(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
