package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeSendMessage   = "send_message"
	InboundTypeDeleteMessage = "delete_message"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventChatHistory    = "chat_history"
	EventReceiveMessage = "receive_message"
	EventMessageUpdated = "message_updated"
	EventModeratorToken = "moderator_token"
)

// SendMessageData is a post request from the client. Password is checked
// against the moderator secret and never persisted or echoed back.
type SendMessageData struct {
	User      string `json:"user"`
	Message   string `json:"message"`
	ImageURL  string `json:"imageUrl,omitempty"`
	VideoURL  string `json:"videoUrl,omitempty"`
	StickerID string `json:"stickerId,omitempty"`
	Password  string `json:"password,omitempty"`
}

// DeleteMessageData requests a soft delete. IsModerator is the client's own
// claim; Token carries the server-issued credential when the server is
// configured not to trust that claim.
type DeleteMessageData struct {
	MessageID   string `json:"messageId"`
	User        string `json:"user"`
	IsModerator bool   `json:"isModerator"`
	Token       string `json:"token,omitempty"`
}

// MessagePayload is the wire shape of a persisted message record. Optional
// fields are omitted when absent.
type MessagePayload struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Message     string    `json:"message"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	StickerID   string    `json:"stickerId,omitempty"`
	IsModerator bool      `json:"isModerator"`
	IsDeleted   bool      `json:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HistoryData carries the ascending-time-ordered history sent on connect.
type HistoryData struct {
	Messages []MessagePayload `json:"messages"`
}

// TokenData delivers a server-issued moderator credential.
type TokenData struct {
	Token string `json:"token"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
