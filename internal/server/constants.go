// Package server provides HTTP and WebSocket access to activity events
package server

import "time"

// Server configuration constants
const (
	// Per-connection WS message rate limiting
	RateLimitMessages = 20
	RateLimitWindow   = time.Second

	// Defaults for time-ranged queries
	DefaultStatsWindow   = 24 * time.Hour
	DefaultSummaryWindow = 24 * time.Hour

	// Text truncation limit for API responses
	TextPreviewLimit = 500
)
