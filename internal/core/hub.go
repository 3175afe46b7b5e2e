package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/fuzichat/fuzichat-server/internal/auth"
	"github.com/fuzichat/fuzichat-server/internal/store"
)

// DeletedPlaceholder replaces the text of a soft-deleted message.
const DeletedPlaceholder = "[message deleted]"

// Options tune hub behavior.
type Options struct {
	// HistoryLimit bounds the history replayed to a new connection.
	HistoryLimit int

	// RejectEmptyPosts rejects posts carrying no text, media or sticker.
	RejectEmptyPosts bool

	// RequireModeratorToken ignores the client-asserted moderator flag on
	// deletes and demands a token minted with Tokens instead. The zero
	// value takes the client flag at face value.
	RequireModeratorToken bool
	Tokens                *auth.TokenConfig
}

// Hub owns the connection registry and runs the message fan-out: history
// replay on connect, post persistence and broadcast, soft-delete
// authorization and broadcast.
type Hub struct {
	store      store.MessageStore
	authorizer *auth.Authorizer
	opts       Options
	registry   *Registry

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand

	log zerolog.Logger
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub around the given store and authorizer.
func NewHub(st store.MessageStore, authorizer *auth.Authorizer, opts Options, logger *zerolog.Logger) *Hub {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 100
	}
	lg := zerolog.Nop()
	if logger != nil {
		lg = *logger
	}
	return &Hub{
		store:      st,
		authorizer: authorizer,
		opts:       opts,
		registry:   NewRegistry(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand),
		log:        lg,
	}
}

// RegisterClient adds a connection to the hub. Blocks until the hub loop
// picks it up.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a connection from the hub.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes registrations and client commands until ctx is cancelled.
// Commands that touch the store run as independent tasks so a hung store
// call stalls only that one operation, never the loop.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registry.Add(client)
			h.log.Info().Str("client_id", client.ID).Msg("client connected")
			go h.pumpCommands(ctx, client)
			go h.replayHistory(ctx, client)
		case client := <-h.unregister:
			h.registry.Remove(client)
			h.log.Info().Str("client_id", client.ID).Msg("client disconnected")
		case cc := <-h.commands:
			switch cc.cmd.Kind {
			case CommandPostMessage:
				go h.handlePost(ctx, cc.client, cc.cmd.Post)
			case CommandDeleteMessage:
				go h.handleDelete(ctx, cc.cmd.Delete)
			}
		case <-ctx.Done():
			return
		}
	}
}

// pumpCommands forwards a client's commands into the hub loop. Exits when
// the client's command channel is closed by the transport.
func (h *Hub) pumpCommands(ctx context.Context, c *Client) {
	for cmd := range c.Commands {
		select {
		case h.commands <- clientCommand{client: c, cmd: cmd}:
		case <-ctx.Done():
			return
		}
	}
}

// replayHistory sends the bounded recent history to a single client. A store
// failure leaves the connection usable, just without history.
func (h *Hub) replayHistory(ctx context.Context, c *Client) {
	messages, err := h.store.ListRecent(ctx, h.opts.HistoryLimit)
	if err != nil {
		h.log.Warn().Err(err).Str("client_id", c.ID).Msg("history fetch failed")
		return
	}
	h.registry.Send(c, &Event{Kind: EventHistory, Messages: messages})
}

func (h *Hub) handlePost(ctx context.Context, sender *Client, draft PostDraft) {
	isModerator := h.authorizer.Authorize(draft.Author, draft.Password)

	msgDraft := store.MessageDraft{
		Author:      draft.Author,
		Text:        draft.Text,
		ImageURL:    draft.ImageURL,
		VideoURL:    draft.VideoURL,
		StickerID:   draft.StickerID,
		IsModerator: isModerator,
	}

	if h.opts.RejectEmptyPosts && !msgDraft.HasContent() {
		h.registry.Send(sender, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeEmptyMessage, "message has no content"),
		})
		return
	}

	saved, err := h.store.Insert(ctx, msgDraft)
	if err != nil {
		// The poster rendered its own optimistic copy; failure stays on the
		// server side of the channel.
		h.log.Error().Err(err).Str("author", draft.Author).Msg("failed to save message")
		return
	}

	h.registry.BroadcastExcept(sender, &Event{Kind: EventMessage, Message: saved})

	if isModerator && h.opts.RequireModeratorToken && h.opts.Tokens != nil {
		token, err := auth.MintModeratorToken(h.opts.Tokens, saved.Author)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to mint moderator token")
			return
		}
		h.registry.Send(sender, &Event{Kind: EventModeratorToken, Token: token})
	}
}

func (h *Hub) handleDelete(ctx context.Context, req DeleteRequest) {
	msg, err := h.store.GetByID(ctx, req.MessageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.log.Debug().Str("message_id", req.MessageID).Msg("delete of unknown message")
		} else {
			h.log.Error().Err(err).Str("message_id", req.MessageID).Msg("failed to fetch message")
		}
		return
	}

	// Deleted is terminal; a repeat delete is a no-op.
	if msg.IsDeleted {
		return
	}

	if !h.deleteAllowed(msg, req) {
		h.log.Debug().
			Str("message_id", req.MessageID).
			Str("user", req.User).
			Msg("unauthorized delete ignored")
		return
	}

	updated, err := h.store.MarkDeleted(ctx, req.MessageID, DeletedPlaceholder)
	if err != nil {
		h.log.Error().Err(err).Str("message_id", req.MessageID).Msg("failed to delete message")
		return
	}

	// Unlike posts, the requester gets the server-confirmed state too.
	h.registry.Broadcast(&Event{Kind: EventMessageUpdated, Message: updated})
}

// deleteAllowed implements the deletion policy: authors may delete their own
// messages, moderators may delete any.
func (h *Hub) deleteAllowed(msg *store.Message, req DeleteRequest) bool {
	if msg.Author == req.User {
		return true
	}
	if !h.opts.RequireModeratorToken {
		return req.IsModerator
	}
	if h.opts.Tokens == nil || req.Token == "" {
		return false
	}
	_, err := auth.ValidateModeratorToken(h.opts.Tokens, req.Token)
	return err == nil
}
