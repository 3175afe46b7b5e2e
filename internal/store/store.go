package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a message id does not exist in the store.
var ErrNotFound = errors.New("message not found")

// Message is the persisted chat record. ID and CreatedAt are assigned by the
// store on insert and never change. IsModerator reflects the authorization
// result at creation time and is never re-evaluated.
type Message struct {
	ID          string
	Author      string
	Text        string
	ImageURL    string
	VideoURL    string
	StickerID   string
	IsModerator bool
	IsDeleted   bool
	CreatedAt   time.Time
}

// MessageDraft carries the fields the caller controls when posting.
type MessageDraft struct {
	Author      string
	Text        string
	ImageURL    string
	VideoURL    string
	StickerID   string
	IsModerator bool
}

// HasContent reports whether the draft carries any text, media or sticker.
func (d MessageDraft) HasContent() bool {
	return d.Text != "" || d.ImageURL != "" || d.VideoURL != "" || d.StickerID != ""
}

// MessageStore handles message persistence.
type MessageStore interface {
	// Insert persists a draft, assigning id and creation time, and returns
	// the full record.
	Insert(ctx context.Context, draft MessageDraft) (*Message, error)

	// ListRecent returns up to limit of the most recent messages, ordered
	// ascending by creation time. The result is deterministic for a fixed
	// store state.
	ListRecent(ctx context.Context, limit int) ([]*Message, error)

	// GetByID retrieves a message by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*Message, error)

	// MarkDeleted applies the soft-delete transform: text is replaced with
	// placeholder, media fields are cleared and IsDeleted is set. Returns
	// the updated record, or ErrNotFound if the id does not exist.
	MarkDeleted(ctx context.Context, id, placeholder string) (*Message, error)

	// Close closes the underlying store connection.
	Close() error
}
