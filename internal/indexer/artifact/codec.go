// Package artifact persists corpus generations: the inverted index, the IDF
// table derived from it, and the feature-selection report, tied together by a
// manifest that records checksums and the index fingerprint.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/selection"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
)

// Kind names one persisted artifact.
type Kind string

const (
	KindIndex    Kind = "index"
	KindIDF      Kind = "idf"
	KindFeatures Kind = "features"
)

func EncodeIndex(ix *index.InvertedIndex) ([]byte, error) {
	data, err := json.Marshal(ix)
	if err != nil {
		return nil, fmt.Errorf("encoding index: %w", err)
	}
	return data, nil
}

// wireIndex uses pointers so that a missing field is distinguishable from an
// empty one.
type wireIndex struct {
	Postings *map[string]map[string]int `json:"postings"`
	DF       *map[string]int            `json:"df"`
	DocLen   *map[string]int            `json:"doc_len"`
	N        *int                       `json:"N"`
}

// DecodeIndex parses and validates a serialized index. Missing fields, wrong
// types and broken invariants all fail with ErrCorruptArtifact.
func DecodeIndex(data []byte) (*index.InvertedIndex, error) {
	var w wireIndex
	if err := strictUnmarshal(data, &w); err != nil {
		return nil, apperrors.Corruptf("index: %v", err)
	}
	switch {
	case w.Postings == nil || *w.Postings == nil:
		return nil, apperrors.Corruptf("index: missing postings")
	case w.DF == nil || *w.DF == nil:
		return nil, apperrors.Corruptf("index: missing df")
	case w.DocLen == nil || *w.DocLen == nil:
		return nil, apperrors.Corruptf("index: missing doc_len")
	case w.N == nil:
		return nil, apperrors.Corruptf("index: missing N")
	}
	ix := &index.InvertedIndex{
		Postings: *w.Postings,
		DF:       *w.DF,
		DocLen:   *w.DocLen,
		N:        *w.N,
	}
	if err := ix.Validate(); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	return ix, nil
}

func EncodeIDF(idf ranker.IDFTable) ([]byte, error) {
	data, err := json.Marshal(idf)
	if err != nil {
		return nil, fmt.Errorf("encoding idf: %w", err)
	}
	return data, nil
}

func DecodeIDF(data []byte) (ranker.IDFTable, error) {
	var idf ranker.IDFTable
	if err := strictUnmarshal(data, &idf); err != nil {
		return nil, apperrors.Corruptf("idf: %v", err)
	}
	if err := idf.Validate(); err != nil {
		return nil, fmt.Errorf("idf: %w", err)
	}
	return idf, nil
}

func EncodeSelection(sel *selection.Selection) ([]byte, error) {
	data, err := json.Marshal(sel)
	if err != nil {
		return nil, fmt.Errorf("encoding feature selection: %w", err)
	}
	return data, nil
}

func DecodeSelection(data []byte) (*selection.Selection, error) {
	var w struct {
		SelectedTerms *[]string          `json:"selected_terms"`
		Report        *selection.Report `json:"report"`
	}
	if err := strictUnmarshal(data, &w); err != nil {
		return nil, apperrors.Corruptf("features: %v", err)
	}
	if w.SelectedTerms == nil || w.Report == nil {
		return nil, apperrors.Corruptf("features: missing selected_terms or report")
	}
	terms := *w.SelectedTerms
	if terms == nil {
		terms = []string{}
	}
	return &selection.Selection{SelectedTerms: terms, Report: *w.Report}, nil
}

// strictUnmarshal rejects unknown fields and trailing data.
func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}
