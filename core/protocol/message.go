// Package protocol defines the wire and domain types shared by the chat
// session engine: conversation messages, roles, and the send request body.
package protocol

import "time"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is a role the session engine stores.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single entry in the conversation history.
// ID is unique within a session and, together with Role, never changes once
// the message is stored. Timestamp is in epoch milliseconds.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Role      Role   `json:"role"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage creates an unsaved Message stamped with the current time.
// The store assigns the ID when the message is appended.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Hello, world!")
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Time converts the epoch-millisecond Timestamp to a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}
