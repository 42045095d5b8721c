package httpapi

import "time"

// Config holds experiment server client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

const defaultTimeout = 30 * time.Second
