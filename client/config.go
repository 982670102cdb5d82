package client

import "maps"

// Config holds send endpoint parameters.
type Config struct {
	URL            string            `json:"url,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"` // Zero disables the client timeout.
}

// DefaultConfig returns the default client configuration, targeting the
// relative chat completion path of a local server.
func DefaultConfig() Config {
	return Config{
		URL: "http://localhost:3000/api/chat",
	}
}

// Merge applies non-zero values from source into c. Headers are merged key
// by key.
func (c *Config) Merge(source *Config) {
	if source.URL != "" {
		c.URL = source.URL
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
	if len(source.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(source.Headers))
		}
		maps.Copy(c.Headers, source.Headers)
	}
}
