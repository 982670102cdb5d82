// Package history fetches pages of older conversation messages.
//
// A page request carries the exclusive upper bound (the ID of the oldest
// message the caller holds) and a limit. Pages come back ordered
// oldest-to-newest; an empty page signals that history is exhausted.
package history

import (
	"context"
	"net/http"
	"time"

	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Provider fetches the page of messages immediately older than beforeID.
// An empty beforeID requests the newest page.
type Provider interface {
	Fetch(ctx context.Context, beforeID string, limit int) ([]protocol.Message, error)
}

// Empty is the Provider used when no history service is configured.
// Every page is empty.
type Empty struct{}

func (Empty) Fetch(ctx context.Context, beforeID string, limit int) ([]protocol.Message, error) {
	return nil, nil
}

// Config holds history service parameters.
type Config struct {
	URL            string `json:"url,omitempty"` // Connect service base URL; empty disables history.
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// DefaultConfig returns the default history configuration (disabled).
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.URL != "" {
		c.URL = source.URL
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}

// New creates a Provider from configuration. Returns Empty when URL is empty.
func New(cfg *Config) Provider {
	if cfg.URL == "" {
		return Empty{}
	}
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	return NewConnect(httpClient, cfg.URL)
}
