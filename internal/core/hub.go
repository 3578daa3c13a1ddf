package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/dmchat-server/internal/store"
)

const (
	// DefaultHistoryLimit is used when a history request omits the limit.
	DefaultHistoryLimit = 100
	// defaultStoreTimeout bounds durable-store calls issued by the hub.
	defaultStoreTimeout = 5 * time.Second
)

// Options tunes hub behavior. Zero values fall back to defaults.
type Options struct {
	StoreTimeout time.Duration
	HistoryLimit int
}

// Hub coordinates presence and message delivery. A single goroutine
// (Run) owns the presence table and the session set, so join/leave/send
// are serialized and the duplicate-nickname check is race-free.
type Hub struct {
	store store.Store
	log   *zerolog.Logger

	storeTimeout time.Duration
	historyLimit int

	register   chan *Client
	unregister chan *Client
	commands   chan *Command

	sessions map[*Client]struct{}
	presence *Presence
}

// NewHub creates a hub backed by the given store.
func NewHub(st store.Store, logger *zerolog.Logger, opts Options) *Hub {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		store:        st,
		log:          logger,
		storeTimeout: opts.StoreTimeout,
		historyLimit: opts.HistoryLimit,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		commands:     make(chan *Command, 64),
		sessions:     make(map[*Client]struct{}),
		presence:     NewPresence(),
	}
}

// RegisterClient adds a session to the hub. The client starts
// unauthenticated; it appears in the roster only after a successful join.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a session, running leave semantics if the
// session was authenticated.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Dispatch submits a client command to the hub loop. The reply, if any,
// arrives on the client's Events channel with the command's correlation ID.
func (h *Hub) Dispatch(c *Client, cmd *Command) {
	cmd.client = c
	h.commands <- cmd
}

// Run processes registrations and commands until the context is canceled.
// It must be started exactly once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.sessions[c] = struct{}{}
		case c := <-h.unregister:
			h.handleLeave(ctx, c)
			delete(h.sessions, c)
		case cmd := <-h.commands:
			h.handleCommand(ctx, cmd)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleCommand(ctx context.Context, cmd *Command) {
	c := cmd.client
	if _, ok := h.sessions[c]; !ok {
		// Session already unregistered; nothing to reply to.
		return
	}

	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(ctx, c, cmd)
	case CommandSend:
		h.handleSend(ctx, c, cmd)
	case CommandLoadHistory:
		h.handleLoadHistory(ctx, c, cmd)
	case CommandMarkRead:
		h.handleMarkRead(ctx, c, cmd)
	default:
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeBadRequest, "unknown command")))
	}
}

// handleJoin binds a nickname to the session. Steps, each short-circuiting
// on failure: syntactic validation, presence check (authoritative),
// advisory durable lookup, durable upsert, presence insert, roster
// broadcast. The presence table is not touched until the durable write
// succeeded, so failures never leave a partial entry.
func (h *Hub) handleJoin(ctx context.Context, c *Client, cmd *Command) {
	nickname, cerr := ValidateNickname(cmd.Join.Nickname)
	if cerr != nil {
		h.reply(c, replyEvent(cmd.ID, cerr))
		return
	}

	// A session carries at most one nickname.
	if c.nickname != "" {
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeBadRequest, "session already joined")))
		return
	}

	if h.presence.Contains(nickname) {
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeIdentityInUse, "this nickname is already in use, please choose another")))
		return
	}

	// The durable online flag is advisory only: a record left online by a
	// prior crash must not block reconnection. Presence membership is the
	// liveness authority, so we log and overwrite.
	storeCtx, cancel := context.WithTimeout(ctx, h.storeTimeout)
	existing, err := h.store.GetIdentity(storeCtx, nickname)
	cancel()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeStoreUnavailable, "identity store unavailable, try again")))
		return
	}
	if existing != nil && existing.Online && existing.SessionToken != c.Token {
		h.log.Warn().
			Str("nickname", nickname).
			Str("stale_token", existing.SessionToken).
			Msg("stale online record found, overwriting")
	}

	storeCtx, cancel = context.WithTimeout(ctx, h.storeTimeout)
	_, err = h.store.UpsertOnline(storeCtx, nickname, c.Token)
	cancel()
	if err != nil {
		h.log.Error().Err(err).Str("nickname", nickname).Msg("identity upsert failed")
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeStoreUnavailable, "identity store unavailable, try again")))
		return
	}

	h.presence.Set(nickname, c)
	c.nickname = nickname

	roster := h.presence.Roster()
	h.broadcastRoster(roster)

	ev := replyEvent(cmd.ID, nil)
	ev.Join = &JoinResult{Nickname: nickname, Roster: roster}
	h.reply(c, ev)

	h.log.Info().Str("nickname", nickname).Int("online", len(roster)).Msg("user joined")
}

// handleLeave runs on transport disconnect. Presence removal happens
// before the roster broadcast is computed, so the departing identity never
// appears in the post-disconnect roster.
func (h *Hub) handleLeave(ctx context.Context, c *Client) {
	if c.nickname == "" {
		return
	}
	nickname := c.nickname
	c.nickname = ""

	if !h.presence.Remove(nickname, c) {
		return
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.storeTimeout)
	if err := h.store.SetOffline(storeCtx, nickname); err != nil {
		h.log.Warn().Err(err).Str("nickname", nickname).Msg("failed to mark identity offline")
	}
	cancel()

	roster := h.presence.Roster()
	h.broadcastRoster(roster)

	h.log.Info().Str("nickname", nickname).Int("online", len(roster)).Msg("user left")
}

// handleSend validates, persists and pushes a message. Persistence, not
// delivery, defines success: a push failure after the durable write is
// logged and swallowed.
func (h *Hub) handleSend(ctx context.Context, c *Client, cmd *Command) {
	if c.nickname == "" {
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeUnauthenticated, "you must join first")))
		return
	}

	msg, cerr := NewMessage(c.nickname, cmd.Send)
	if cerr != nil {
		h.reply(c, replyEvent(cmd.ID, cerr))
		return
	}

	// Offline recipients are rejected before any store write; offline
	// delivery is out of scope.
	if !h.presence.Contains(msg.To) {
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeRecipientOffline, "the recipient is not connected")))
		return
	}

	msg.CreatedAt = time.Now().UTC()

	rec := toRecord(msg)
	storeCtx, cancel := context.WithTimeout(ctx, h.storeTimeout)
	err := h.store.SaveMessage(storeCtx, rec)
	cancel()
	if err != nil {
		h.log.Error().Err(err).Str("from", msg.From).Str("to", msg.To).Msg("message persist failed")
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeStoreUnavailable, "message store unavailable, try again")))
		return
	}
	msg.ID = rec.ID

	// Recheck: the recipient may have disconnected while the durable
	// write was in flight.
	if recipient := h.presence.Get(msg.To); recipient != nil {
		delivered := recipient.deliver(&Event{Kind: EventMessageDelivered, Message: msg})
		notified := recipient.deliver(&Event{Kind: EventNotification, Notification: &Notification{
			From:      msg.From,
			Preview:   msg.Preview(),
			Kind:      msg.Kind,
			Timestamp: msg.CreatedAt,
		}})
		if !delivered || !notified {
			h.log.Warn().Str("to", msg.To).Msg("recipient event buffer full, push dropped")
		}
	}

	ev := replyEvent(cmd.ID, nil)
	ev.Message = msg
	h.reply(c, ev)
}

// handleLoadHistory resolves authentication on the hub goroutine, then
// runs the read off-loop so a slow store does not stall presence changes.
func (h *Hub) handleLoadHistory(ctx context.Context, c *Client, cmd *Command) {
	if c.nickname == "" {
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeUnauthenticated, "you must join first")))
		return
	}
	if cmd.History.Counterpart == "" {
		h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeBadRequest, "counterpart is required")))
		return
	}

	nickname := c.nickname
	limit := cmd.History.Limit
	if limit <= 0 || limit > h.historyLimit {
		limit = h.historyLimit
	}

	go func() {
		storeCtx, cancel := context.WithTimeout(ctx, h.storeTimeout)
		defer cancel()

		records, err := h.store.ListConversation(storeCtx, nickname, cmd.History.Counterpart, limit)
		if err != nil {
			h.log.Error().Err(err).Str("nickname", nickname).Msg("history load failed")
			h.reply(c, replyEvent(cmd.ID, coreError(ErrCodeStoreUnavailable, "message store unavailable, try again")))
			return
		}

		// The store returns newest-first; the wire contract is oldest-first.
		messages := make([]*Message, 0, len(records))
		for i := len(records) - 1; i >= 0; i-- {
			messages = append(messages, fromRecord(records[i]))
		}

		ev := replyEvent(cmd.ID, nil)
		ev.Messages = messages
		h.reply(c, ev)
	}()
}

// handleMarkRead is best-effort and fire-and-forget: failures are logged,
// never surfaced.
func (h *Hub) handleMarkRead(ctx context.Context, c *Client, cmd *Command) {
	if c.nickname == "" || cmd.MarkRead.From == "" {
		return
	}

	nickname := c.nickname
	go func() {
		storeCtx, cancel := context.WithTimeout(ctx, h.storeTimeout)
		defer cancel()

		count, err := h.store.MarkRead(storeCtx, cmd.MarkRead.From, nickname)
		if err != nil {
			h.log.Warn().Err(err).Str("from", cmd.MarkRead.From).Str("to", nickname).Msg("mark read failed")
			return
		}
		if count > 0 {
			h.log.Debug().Int64("count", count).Str("from", cmd.MarkRead.From).Str("to", nickname).Msg("messages marked read")
		}
	}()
}

// broadcastRoster sends the roster to every connected session,
// authenticated or not.
func (h *Hub) broadcastRoster(roster []string) {
	ev := &Event{Kind: EventRoster, Roster: roster}
	for c := range h.sessions {
		if !c.deliver(ev) {
			h.log.Warn().Str("token", c.Token).Msg("session event buffer full, roster dropped")
		}
	}
}

func (h *Hub) reply(c *Client, ev *Event) {
	if !c.deliver(ev) {
		h.log.Warn().Str("token", c.Token).Msg("session event buffer full, reply dropped")
	}
}

func toRecord(m *Message) *store.Message {
	rec := &store.Message{
		From:      m.From,
		To:        m.To,
		Kind:      string(m.Kind),
		Content:   m.Content,
		FileURL:   m.FileURL,
		FileName:  m.FileName,
		FileSize:  m.FileSize,
		MimeType:  m.MimeType,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
	if m.Location != nil {
		lat, lon := m.Location.Latitude, m.Location.Longitude
		rec.Latitude = &lat
		rec.Longitude = &lon
	}
	return rec
}

func fromRecord(rec *store.Message) *Message {
	m := &Message{
		ID:        rec.ID,
		From:      rec.From,
		To:        rec.To,
		Kind:      MessageKind(rec.Kind),
		Content:   rec.Content,
		FileURL:   rec.FileURL,
		FileName:  rec.FileName,
		FileSize:  rec.FileSize,
		MimeType:  rec.MimeType,
		Read:      rec.Read,
		CreatedAt: rec.CreatedAt,
	}
	if rec.Latitude != nil && rec.Longitude != nil {
		m.Location = &Location{
			Latitude:  *rec.Latitude,
			Longitude: *rec.Longitude,
			Address:   rec.Content,
		}
	}
	return m
}
