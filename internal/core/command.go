package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandPostMessage posts a new message for broadcast.
	CommandPostMessage CommandKind = iota
	// CommandDeleteMessage requests a soft delete of an existing message.
	CommandDeleteMessage
)

// PostDraft carries an inbound message before persistence. Password is used
// only to resolve moderator privilege and is never stored.
type PostDraft struct {
	Author    string
	Text      string
	ImageURL  string
	VideoURL  string
	StickerID string
	Password  string
}

// DeleteRequest asks for a message to be soft-deleted. IsModerator is the
// caller's own claim; Token is the server-issued alternative used when that
// claim is not trusted.
type DeleteRequest struct {
	MessageID   string
	User        string
	IsModerator bool
	Token       string
}

// Command represents an action requested by a client.
type Command struct {
	Kind   CommandKind
	Post   PostDraft
	Delete DeleteRequest
}
