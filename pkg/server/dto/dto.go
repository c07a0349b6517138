// Package dto defines the JSON shapes of the HTTP API.
package dto

import "github.com/soundprediction/retrievo/pkg/types"

// RetrieveRequest is the body of POST /api/v1/retrieve.
type RetrieveRequest struct {
	Query       string              `json:"query"`
	SearchTypes []string            `json:"search_types,omitempty"`
	Filters     map[string][]string `json:"filters,omitempty"`
	TopK        int                 `json:"top_k,omitempty"`
}

// RetrieveResponse is the body of a successful retrieve call.
type RetrieveResponse struct {
	Records []types.Record `json:"records"`
	Total   int            `json:"total"`
}

// ErrorResponse is the body of any failed call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
