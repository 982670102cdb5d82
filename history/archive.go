package history

import (
	"context"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Archive is an in-memory Provider over a fixed, oldest-to-newest message
// log. It backs history services that keep their log in process.
type Archive struct {
	messages []protocol.Message
	mu       sync.RWMutex
}

// NewArchive creates an Archive holding a copy of messages, which must be
// ordered oldest-to-newest.
func NewArchive(messages []protocol.Message) *Archive {
	return &Archive{messages: slices.Clone(messages)}
}

// Append adds messages at the newest end of the log.
func (a *Archive) Append(messages ...protocol.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, messages...)
}

// Fetch returns up to limit messages immediately preceding beforeID. An empty
// beforeID pages back from the newest end; an unknown beforeID yields an
// empty page.
func (a *Archive) Fetch(ctx context.Context, beforeID string, limit int) ([]protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	end := len(a.messages)
	if beforeID != "" {
		end = slices.IndexFunc(a.messages, func(m protocol.Message) bool {
			return m.ID == beforeID
		})
		if end < 0 {
			return nil, nil
		}
	}

	start := max(end-limit, 0)
	return slices.Clone(a.messages[start:end]), nil
}
