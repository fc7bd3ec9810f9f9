// Package validator checks document uploads before they reach the corpus
// directory and returns per-field error details.
package validator

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/ingestion"
)

const (
	maxIDLength   = 200
	maxBodyLength = 1048576
	TextExt       = ".txt"
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// NormalizeDocumentID trims id and appends the .txt extension when missing.
func NormalizeDocumentID(id string) string {
	id = strings.TrimSpace(id)
	if id != "" && !strings.EqualFold(filepath.Ext(id), TextExt) {
		id += TextExt
	}
	return id
}

// ValidateUpload checks that the document id is a plain file name and the
// body is non-empty UTF-8 text within the size limit.
func ValidateUpload(req *ingestion.UploadRequest) error {
	errs := make(map[string]string)

	id := NormalizeDocumentID(req.DocumentID)
	switch {
	case id == "":
		errs["document_id"] = "document_id is required"
	case len(id) > maxIDLength:
		errs["document_id"] = fmt.Sprintf("document_id must be at most %d characters", maxIDLength)
	case strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, "."):
		errs["document_id"] = "document_id must be a plain file name"
	}

	body := strings.TrimSpace(req.Body)
	switch {
	case body == "":
		errs["body"] = "body is required and must not be empty"
	case len(body) > maxBodyLength:
		errs["body"] = fmt.Sprintf("body must be at most %d bytes", maxBodyLength)
	case !utf8.ValidString(body):
		errs["body"] = "body must be valid UTF-8 text"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
