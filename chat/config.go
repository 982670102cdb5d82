package chat

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/chat/client"
	"github.com/tailored-agentic-units/chat/history"
	"github.com/tailored-agentic-units/chat/session"
)

// Config holds initialization parameters for the controller and the
// subsystems it owns. Each section delegates to that subsystem's
// config-driven constructor.
type Config struct {
	Client      client.Config  `json:"client"`
	History     history.Config `json:"history"`
	Session     session.Config `json:"session"`
	SendHistory bool           `json:"send_history,omitempty"` // Send the whole conversation instead of only the new turn.
	ChunkSize   int            `json:"chunk_size,omitempty"`   // Read size for the reply stream; zero uses the stream default.
	Observer    string         `json:"observer,omitempty"`     // Registered observer name, or a comma-separated list.
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Client:   client.DefaultConfig(),
		History:  history.DefaultConfig(),
		Session:  session.DefaultConfig(),
		Observer: "slog",
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Client.Merge(&source.Client)
	c.History.Merge(&source.History)
	c.Session.Merge(&source.Session)

	if source.SendHistory {
		c.SendHistory = true
	}
	if source.ChunkSize > 0 {
		c.ChunkSize = source.ChunkSize
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
