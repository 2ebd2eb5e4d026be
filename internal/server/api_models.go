package server

import "github.com/agentlens/agentlens/internal/model"

// ScanRequest is the payload for synchronous scans and scan jobs. Omitted
// options select the scanner defaults.
type ScanRequest struct {
	URL     string             `json:"url" example:"https://example.com/docs"`
	Options *model.ScanOptions `json:"options,omitempty"`
}

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
