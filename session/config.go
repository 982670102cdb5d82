package session

const defaultPageSize = 20

// Config holds session initialization parameters.
type Config struct {
	PageSize int `json:"page_size,omitempty"` // Messages requested per older page.
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{PageSize: defaultPageSize}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.PageSize > 0 {
		c.PageSize = source.PageSize
	}
}

// New creates a Session and its Cursor from configuration. Sessions are
// always in-memory.
func New(cfg *Config) (Session, *Cursor, error) {
	s := NewMemorySession()
	return s, NewCursor(s, cfg.PageSize), nil
}
