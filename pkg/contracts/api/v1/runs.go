// Package api contains the HTTP API contracts of trackstats.
// Version v1 represents the current stable API version.
package api

import (
	"trackstats/pkg/contracts/domain"
)

const (
	// UploadField is the multipart field carrying the catalog file
	UploadField = "file"

	// DefaultListLimit is used when the limit query parameter is absent
	DefaultListLimit = 20

	// MaxListLimit caps the limit query parameter of the run listing
	MaxListLimit = 100
)

// ListRunsResponse is the body of GET /api/v1/analyses
type ListRunsResponse struct {
	Status string              `json:"status"`
	Data   []domain.RunSummary `json:"data"`
	Count  int                 `json:"count"`
}

// NewListRunsResponse wraps runs in the success envelope. A nil slice
// encodes as an empty array.
func NewListRunsResponse(runs []domain.RunSummary) ListRunsResponse {
	if runs == nil {
		runs = []domain.RunSummary{}
	}
	return ListRunsResponse{
		Status: "success",
		Data:   runs,
		Count:  len(runs),
	}
}
