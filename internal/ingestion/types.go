// Package ingestion defines the request/response types for adding documents
// to the corpus directory.
package ingestion

// UploadRequest is the JSON body accepted by the document upload endpoint.
// DocumentID becomes the file name; a missing .txt extension is added.
type UploadRequest struct {
	DocumentID string `json:"document_id"`
	Body       string `json:"body"`
}

// UploadResponse is returned once the document is on disk. It becomes
// searchable after the next rebuild.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Bytes      int    `json:"bytes"`
	Status     string `json:"status"`
}

const StatusStored = "STORED"
