// Package httpapi provides HTTP handlers and data transfer objects for the Songstack API.
package httpapi

import "github.com/dsjohal14/songstack/internal/scope/db"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}

// CountResponse represents the song count response
type CountResponse struct {
	Count int64 `json:"count"`
}

// SongsResponse represents the list songs response
type SongsResponse struct {
	Songs []db.Song `json:"songs"`
}

// MessageResponse carries client error messages (400, 404)
type MessageResponse struct {
	Message string `json:"message"`
}

// ConflictResponse is returned when creating a song whose id is taken.
// The capitalized key is kept for compatibility with existing clients.
type ConflictResponse struct {
	Message string `json:"Message"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
