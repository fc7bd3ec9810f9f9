// Package handler serves the document upload endpoint. Uploaded documents are
// written to the corpus directory and become searchable after the next
// rebuild.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
)

const maxRequestBytes = 2 << 20

// DocumentWriter persists one document. *loader.DirSource satisfies it.
type DocumentWriter interface {
	Save(docID, body string) error
}

type Handler struct {
	writer DocumentWriter
	logger *slog.Logger
}

func New(writer DocumentWriter) *Handler {
	return &Handler{
		writer: writer,
		logger: logger.Component("ingestion-handler"),
	}
}

// Register mounts the upload route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/admin/documents", h.Upload)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	var req ingestion.UploadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validator.ValidateUpload(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	docID := validator.NormalizeDocumentID(req.DocumentID)
	if err := h.writer.Save(docID, req.Body); err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("storing document failed", "doc_id", docID, "error", err, "status_code", statusCode)
		h.writeError(w, statusCode, "storing document failed")
		return
	}
	log.Info("document stored", "doc_id", docID, "bytes", len(req.Body))
	h.writeJSON(w, http.StatusCreated, ingestion.UploadResponse{
		DocumentID: docID,
		Bytes:      len(req.Body),
		Status:     ingestion.StatusStored,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
