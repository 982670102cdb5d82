// Package session owns the ordered conversation history for one chat session
// and the pagination cursor used to walk that history backwards.
package session

import (
	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Session holds the ordered, oldest-to-newest message history. No two
// messages share an ID. Implementations must be safe for concurrent use and
// must never block on I/O.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AppendUser stores a new user message at the tail and returns it.
	AppendUser(content string) protocol.Message
	// AppendAssistant stores a new assistant message at the tail and returns it.
	AppendAssistant(content string) protocol.Message
	// PrependOlder inserts batch before the current head, preserving batch
	// order and dropping IDs already present. Returns the number inserted.
	PrependOlder(batch []protocol.Message) int
	// Messages returns a defensive copy of the conversation history.
	Messages() []protocol.Message
	// Len returns the number of stored messages.
	Len() int
	// Oldest returns the head of the history, if any.
	Oldest() (protocol.Message, bool)
	// Has reports whether a message with id is stored.
	Has(id string) bool
}
