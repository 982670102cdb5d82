package chat

import "errors"

// Sentinel errors for rejected commands. A rejected command changes no state
// and issues no request.
var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrSendInFlight     = errors.New("a message is already being sent")
	ErrFetchInFlight    = errors.New("older messages are already being fetched")
	ErrHistoryExhausted = errors.New("no older messages remain")
	ErrNoCursor         = errors.New("no messages to page back from")
)
