package protocol

// Turn is the role/content pair carried in a send request.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body POSTed to the chat completion endpoint.
type ChatRequest struct {
	Messages []Turn `json:"messages"`
}

// TurnsFrom strips store metadata from messages, preserving order.
func TurnsFrom(messages []Message) []Turn {
	turns := make([]Turn, len(messages))
	for i, msg := range messages {
		turns[i] = Turn{Role: msg.Role, Content: msg.Content}
	}
	return turns
}

// InitRequest creates a request carrying a single user turn.
func InitRequest(content string) ChatRequest {
	return ChatRequest{Messages: []Turn{{Role: RoleUser, Content: content}}}
}
