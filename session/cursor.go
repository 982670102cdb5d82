package session

import (
	"cmp"
	"slices"
	"sync/atomic"

	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Cursor derives the key for the next older-page request from the head of a
// Session and records when history is exhausted. Exhaustion is permanent.
type Cursor struct {
	session   Session
	pageSize  int
	exhausted atomic.Bool
}

// NewCursor creates a Cursor over s. A non-positive pageSize falls back to
// the default.
func NewCursor(s Session, pageSize int) *Cursor {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Cursor{session: s, pageSize: pageSize}
}

// NextPageKey returns the ID of the oldest stored message, used as the
// exclusive upper bound of the next page. Returns false on an empty session;
// callers must not request a page in that case.
func (c *Cursor) NextPageKey() (string, bool) {
	oldest, ok := c.session.Oldest()
	if !ok {
		return "", false
	}
	return oldest.ID, true
}

// PageSize returns the number of messages requested per page.
func (c *Cursor) PageSize() int {
	return c.pageSize
}

// MarkExhausted records that no older pages exist.
func (c *Cursor) MarkExhausted() {
	c.exhausted.Store(true)
}

// HasMore reports whether older pages may still exist.
func (c *Cursor) HasMore() bool {
	return !c.exhausted.Load()
}

// OrderPage returns a copy of batch stable-sorted oldest-to-newest by
// timestamp, the order PrependOlder expects.
func OrderPage(batch []protocol.Message) []protocol.Message {
	ordered := slices.Clone(batch)
	slices.SortStableFunc(ordered, func(a, b protocol.Message) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return ordered
}
