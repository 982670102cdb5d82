package chat

import "github.com/tailored-agentic-units/chat/observability"

// Controller event types.
const (
	EventSendStart      observability.EventType = "chat.send.start"
	EventSendComplete   observability.EventType = "chat.send.complete"
	EventSendError      observability.EventType = "chat.send.error"
	EventStreamSkip     observability.EventType = "chat.stream.skip"
	EventFetchStart     observability.EventType = "chat.fetch.start"
	EventFetchComplete  observability.EventType = "chat.fetch.complete"
	EventFetchExhausted observability.EventType = "chat.fetch.exhausted"
	EventFetchError     observability.EventType = "chat.fetch.error"
)
