// Package chat implements the request lifecycle controller: it owns the
// session state, submits user turns to the completion endpoint, folds the
// streamed reply into one assistant message, and pages older history in.
//
// The controller initializes from configuration via New. Functional options
// allow test overrides of any collaborator.
//
//	c, err := chat.New(&cfg)
//	stop := c.Watch(render)
//	defer stop()
//	err = c.Submit(ctx, "Hello!")
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/chat/client"
	"github.com/tailored-agentic-units/chat/core/protocol"
	"github.com/tailored-agentic-units/chat/history"
	"github.com/tailored-agentic-units/chat/observability"
	"github.com/tailored-agentic-units/chat/session"
	"github.com/tailored-agentic-units/chat/stream"
)

// State is a snapshot of the session state. Empty Error and OldestMessageID
// mean none.
type State struct {
	Messages        []protocol.Message
	IsLoading       bool
	IsTyping        bool
	Error           string
	HasMoreMessages bool
	OldestMessageID string
}

// Option configures a Controller after config-driven initialization.
type Option func(*Controller)

// WithSender overrides the config-created send client.
func WithSender(s client.Sender) Option {
	return func(c *Controller) { c.sender = s }
}

// WithHistory overrides the config-created history provider.
func WithHistory(p history.Provider) Option {
	return func(c *Controller) { c.history = p }
}

// WithSession overrides the config-created session. The cursor follows the
// new session and keeps the configured page size.
func WithSession(s session.Session) Option {
	return func(c *Controller) {
		c.session = s
		c.cursor = session.NewCursor(s, c.cursor.PageSize())
	}
}

// WithObserver overrides the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithFragmentHandler registers a live preview of the reply being streamed.
// Preview text is never written to the session.
func WithFragmentHandler(fn stream.FragmentHandler) Option {
	return func(c *Controller) { c.onFragment = fn }
}

// Controller owns the session state of one conversation. At most one send
// and one fetch are in flight at a time; each store mutation is applied in a
// single locked step after the awaited request resolves. Safe for concurrent
// use.
type Controller struct {
	session     session.Session
	cursor      *session.Cursor
	sender      client.Sender
	history     history.Provider
	observer    observability.Observer
	onFragment  stream.FragmentHandler
	sendHistory bool
	chunkSize   int

	mu       sync.Mutex
	sending  bool
	fetching bool
	errMsg   string
	version  uint64

	watchMu   sync.Mutex
	watchers  map[int]func(State)
	nextWatch int

	emitMu  sync.Mutex
	emitted uint64
}

// New creates a Controller from configuration. Options applied after
// initialization can override any collaborator.
func New(cfg *Config, opts ...Option) (*Controller, error) {
	sesh, cursor, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sender, err := client.New(&cfg.Client)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	observer, err := resolveObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	c := &Controller{
		session:     sesh,
		cursor:      cursor,
		sender:      sender,
		history:     history.New(&cfg.History),
		observer:    observer,
		sendHistory: cfg.SendHistory,
		chunkSize:   cfg.ChunkSize,
		watchers:    make(map[int]func(State)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SessionID returns the identifier of the owned session.
func (c *Controller) SessionID() string {
	return c.session.ID()
}

// State returns a snapshot of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Watch registers fn to receive a snapshot after every state change, in
// change order. fn runs on the goroutine that made the change and must not
// issue commands synchronously. The returned func unregisters fn.
func (c *Controller) Watch(fn func(State)) (cancel func()) {
	c.watchMu.Lock()
	id := c.nextWatch
	c.nextWatch++
	c.watchers[id] = fn
	c.watchMu.Unlock()

	return func() {
		c.watchMu.Lock()
		delete(c.watchers, id)
		c.watchMu.Unlock()
	}
}

// Submit sends text as a user turn. It is the collaborator-facing form of
// SendMessage.
func (c *Controller) Submit(ctx context.Context, text string) error {
	_, err := c.SendMessage(ctx, text)
	return err
}

// RequestOlderPage fetches the page preceding the oldest stored message.
// Returns ErrNoCursor without issuing a request when the session is empty.
func (c *Controller) RequestOlderPage(ctx context.Context) error {
	key, ok := c.cursor.NextPageKey()
	if !ok {
		return ErrNoCursor
	}
	_, err := c.FetchOlderMessages(ctx, key, c.cursor.PageSize())
	return err
}

// DismissError clears the pending error, if any.
func (c *Controller) DismissError() {
	c.mu.Lock()
	if c.errMsg == "" {
		c.mu.Unlock()
		return
	}
	c.errMsg = ""
	c.publishLocked()
}

// SendMessage appends text as a user message, streams the reply, and appends
// it as one assistant message. The user message stays in history whatever
// the outcome. Returns the assistant message, or nil when the reply decoded
// to empty text.
//
// Blank text returns ErrEmptyMessage and a call made while another send is
// in flight returns ErrSendInFlight; neither changes state. Request failures
// are returned as *client.RequestError and recorded as the session error.
func (c *Controller) SendMessage(ctx context.Context, text string) (*protocol.Message, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return nil, ErrSendInFlight
	}
	c.sending = true
	c.errMsg = ""
	user := c.session.AppendUser(content)
	req := c.requestLocked(user)
	c.publishLocked()

	c.observer.OnEvent(ctx, observability.NewEvent(EventSendStart, observability.LevelInfo, "chat.SendMessage", map[string]any{
		"message_id":     user.ID,
		"content_length": len(content),
		"turns":          len(req.Messages),
	}))

	reply, err := c.receive(ctx, req)

	c.mu.Lock()
	c.sending = false
	var assistant *protocol.Message
	if err != nil {
		c.errMsg = "Failed to send message: " + err.Error()
	} else if reply != "" {
		msg := c.session.AppendAssistant(reply)
		assistant = &msg
	}
	c.publishLocked()

	if err != nil {
		c.observer.OnEvent(ctx, observability.NewEvent(EventSendError, observability.LevelWarning, "chat.SendMessage", errorData(err)))
		return nil, err
	}

	data := map[string]any{"reply_length": len(reply)}
	if assistant != nil {
		data["message_id"] = assistant.ID
	}
	c.observer.OnEvent(ctx, observability.NewEvent(EventSendComplete, observability.LevelInfo, "chat.SendMessage", data))
	return assistant, nil
}

// FetchOlderMessages requests up to limit messages older than beforeID and
// prepends them. An empty page marks history exhausted for the rest of the
// session. A non-positive limit uses the configured page size. Returns the
// number of messages inserted.
//
// Returns ErrHistoryExhausted once history is exhausted and ErrFetchInFlight
// while another fetch runs; neither changes state. A failed fetch leaves
// HasMoreMessages untouched so it can be retried.
func (c *Controller) FetchOlderMessages(ctx context.Context, beforeID string, limit int) (int, error) {
	if limit <= 0 {
		limit = c.cursor.PageSize()
	}

	c.mu.Lock()
	if !c.cursor.HasMore() {
		c.mu.Unlock()
		return 0, ErrHistoryExhausted
	}
	if c.fetching {
		c.mu.Unlock()
		return 0, ErrFetchInFlight
	}
	c.fetching = true
	c.errMsg = ""
	c.publishLocked()

	c.observer.OnEvent(ctx, observability.NewEvent(EventFetchStart, observability.LevelVerbose, "chat.FetchOlderMessages", map[string]any{
		"before_id": beforeID,
		"limit":     limit,
	}))

	page, err := c.history.Fetch(ctx, beforeID, limit)

	c.mu.Lock()
	c.fetching = false
	inserted := 0
	switch {
	case err != nil:
		c.errMsg = "Failed to fetch older messages: " + err.Error()
	case len(page) == 0:
		c.cursor.MarkExhausted()
	default:
		inserted = c.session.PrependOlder(session.OrderPage(page))
	}
	c.publishLocked()

	switch {
	case err != nil:
		c.observer.OnEvent(ctx, observability.NewEvent(EventFetchError, observability.LevelWarning, "chat.FetchOlderMessages", errorData(err)))
		return 0, err
	case len(page) == 0:
		c.observer.OnEvent(ctx, observability.NewEvent(EventFetchExhausted, observability.LevelInfo, "chat.FetchOlderMessages", nil))
	default:
		c.observer.OnEvent(ctx, observability.NewEvent(EventFetchComplete, observability.LevelVerbose, "chat.FetchOlderMessages", map[string]any{
			"received": len(page),
			"inserted": inserted,
		}))
	}
	return inserted, nil
}

func (c *Controller) requestLocked(user protocol.Message) protocol.ChatRequest {
	if !c.sendHistory {
		return protocol.InitRequest(user.Content)
	}
	return protocol.ChatRequest{Messages: protocol.TurnsFrom(c.session.Messages())}
}

func (c *Controller) receive(ctx context.Context, req protocol.ChatRequest) (string, error) {
	body, err := c.sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	defer body.Close()

	opts := []stream.Option{
		stream.WithSkipHandler(func(de *stream.DecodeError) {
			c.observer.OnEvent(ctx, observability.NewEvent(EventStreamSkip, observability.LevelVerbose, "chat.SendMessage", map[string]any{
				"line":  de.Line,
				"error": de.Err.Error(),
			}))
		}),
	}
	if c.onFragment != nil {
		opts = append(opts, stream.WithFragmentHandler(c.onFragment))
	}

	text, err := stream.Decode(ctx, stream.Chunks(body, c.chunkSize), opts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &client.RequestError{Kind: client.KindNetwork, Err: err}
	}
	return text, nil
}

func (c *Controller) snapshotLocked() State {
	oldest, _ := c.cursor.NextPageKey()
	return State{
		Messages:        c.session.Messages(),
		IsLoading:       c.sending || c.fetching,
		IsTyping:        c.sending,
		Error:           c.errMsg,
		HasMoreMessages: c.cursor.HasMore(),
		OldestMessageID: oldest,
	}
}

// publishLocked records a state change, releases c.mu, and notifies
// watchers. Snapshots overtaken by a newer change are dropped so watchers
// never observe state going backwards.
func (c *Controller) publishLocked() {
	c.version++
	version := c.version
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if version <= c.emitted {
		return
	}
	c.emitted = version

	c.watchMu.Lock()
	watchers := make([]func(State), 0, len(c.watchers))
	for _, fn := range c.watchers {
		watchers = append(watchers, fn)
	}
	c.watchMu.Unlock()

	for _, fn := range watchers {
		fn(snapshot)
	}
}

// resolveObserver looks up a comma-separated list of registered observer
// names, fanning out when more than one is named.
func resolveObserver(names string) (observability.Observer, error) {
	parts := strings.Split(names, ",")
	if len(parts) == 1 {
		return observability.GetObserver(strings.TrimSpace(parts[0]))
	}

	resolved := make([]observability.Observer, 0, len(parts))
	for _, name := range parts {
		obs, err := observability.GetObserver(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, obs)
	}
	return observability.NewMultiObserver(resolved...), nil
}

func errorData(err error) map[string]any {
	data := map[string]any{"error": err.Error()}
	var re *client.RequestError
	if errors.As(err, &re) {
		data["kind"] = re.Kind.String()
		if re.StatusCode != 0 {
			data["status"] = re.StatusCode
		}
	}
	return data
}
