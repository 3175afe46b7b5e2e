package core

import "github.com/fuzichat/fuzichat-server/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventHistory delivers the bounded message history to a client right
	// after it connects.
	EventHistory EventKind = iota
	// EventMessage notifies clients about a newly posted message.
	EventMessage
	// EventMessageUpdated notifies clients that a message was soft-deleted.
	EventMessageUpdated
	// EventModeratorToken delivers a server-issued moderator credential to
	// the poster. Emitted only when client moderator claims are not trusted.
	EventModeratorToken
	// EventError notifies a client about a rejected request.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Message  *store.Message
	Messages []*store.Message // For EventHistory
	Token    string           // For EventModeratorToken
	Error    *CoreError
}
