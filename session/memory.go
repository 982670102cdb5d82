package session

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/chat/core/protocol"
)

type memorySession struct {
	id       string
	messages []protocol.Message
	ids      map[string]struct{}
	mu       sync.RWMutex
}

// NewMemorySession creates a Session backed by an in-memory slice.
// The session is assigned a unique UUIDv7 identifier.
func NewMemorySession() Session {
	return &memorySession{
		id:  uuid.Must(uuid.NewV7()).String(),
		ids: make(map[string]struct{}),
	}
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) AppendUser(content string) protocol.Message {
	return s.append(protocol.RoleUser, content)
}

func (s *memorySession) AppendAssistant(content string) protocol.Message {
	return s.append(protocol.RoleAssistant, content)
}

func (s *memorySession) append(role protocol.Role, content string) protocol.Message {
	msg := protocol.Message{
		ID:        newMessageID(role),
		Content:   content,
		Role:      role,
		Timestamp: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// UUIDv7 is monotonic within the process; a repeat is a generator bug.
	if _, exists := s.ids[msg.ID]; exists {
		panic(fmt.Sprintf("session: duplicate message id %s", msg.ID))
	}
	s.ids[msg.ID] = struct{}{}
	s.messages = append(s.messages, msg)
	return msg
}

func (s *memorySession) PrependOlder(batch []protocol.Message) int {
	if len(batch) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]protocol.Message, 0, len(batch))
	for _, msg := range batch {
		if msg.ID == "" || !msg.Role.IsValid() {
			continue
		}
		if _, exists := s.ids[msg.ID]; exists {
			continue
		}
		s.ids[msg.ID] = struct{}{}
		fresh = append(fresh, msg)
	}

	if len(fresh) == 0 {
		return 0
	}
	s.messages = append(fresh, s.messages...)
	return len(fresh)
}

func (s *memorySession) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

func (s *memorySession) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *memorySession) Oldest() (protocol.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return protocol.Message{}, false
	}
	return s.messages[0], true
}

func (s *memorySession) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.ids[id]
	return exists
}

func newMessageID(role protocol.Role) string {
	return string(role) + "-" + uuid.Must(uuid.NewV7()).String()
}
