// Package api holds the response envelopes shared across handlers.
package api

type ErrorResponse struct {
	Error string `json:"error" example:"plan not found"`
}

type MessageResponse struct {
	Message string `json:"message" example:"email queued"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
