package services

import "errors"

// Data service errors
var (
	// Dataset errors
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	ErrInvalidYearRange   = errors.New("invalid year range")

	// WebSocket errors
	ErrWebSocketUpgrade = errors.New("websocket upgrade failed")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
