package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", New(ErrInvalidInput, http.StatusTeapot, "short and stout"), http.StatusTeapot},
		{"not found", fmt.Errorf("lookup: %w", ErrDocumentNotFound), http.StatusNotFound},
		{"invalid", ErrInvalidInput, http.StatusBadRequest},
		{"no index", ErrNoIndex, http.StatusServiceUnavailable},
		{"corrupt", Corruptf("index.json: missing postings"), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCorruptfIsCorrupt(t *testing.T) {
	err := fmt.Errorf("loading: %w", Corruptf("bad field %q", "df"))
	if !errors.Is(err, ErrCorruptArtifact) {
		t.Fatalf("expected ErrCorruptArtifact in chain, got %v", err)
	}
}
