package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/fuzichat/fuzichat-server/internal/proto"
)

func TestWebSocketHistoryOnConnect(t *testing.T) {
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)

	outbound := readEvent(t, ctx, conn, proto.EventChatHistory)

	var history proto.HistoryData
	if err := json.Unmarshal(outbound.Data, &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history.Messages) != 0 {
		t.Fatalf("expected empty history for a fresh store, got %d", len(history.Messages))
	}
}

func TestWebSocketPostAndBroadcast(t *testing.T) {
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)

	// Drain history so both connections are fully set up before posting.
	readEvent(t, ctx, connA, proto.EventChatHistory)
	readEvent(t, ctx, connB, proto.EventChatHistory)

	sendInbound(t, ctx, connA, proto.InboundTypeSendMessage, proto.SendMessageData{
		User:    "bob",
		Message: "hi",
	})

	outbound := readEvent(t, ctx, connB, proto.EventReceiveMessage)

	var msg proto.MessagePayload
	if err := json.Unmarshal(outbound.Data, &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if msg.User != "bob" || msg.Message != "hi" {
		t.Fatalf("unexpected payload: %+v", msg)
	}
	if msg.ID == "" || msg.IsModerator || msg.IsDeleted {
		t.Fatalf("unexpected record state: %+v", msg)
	}

	// The poster must not receive its own message back on this channel.
	shortCtx, shortCancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer shortCancel()
	var echoed outboundEnvelope
	if err := wsjson.Read(shortCtx, connA, &echoed); err == nil &&
		echoed.Event == proto.EventReceiveMessage {
		t.Fatal("poster received its own broadcast")
	}
}

func TestWebSocketModeratorPost(t *testing.T) {
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)
	readEvent(t, ctx, connA, proto.EventChatHistory)
	readEvent(t, ctx, connB, proto.EventChatHistory)

	sendInbound(t, ctx, connA, proto.InboundTypeSendMessage, proto.SendMessageData{
		User:     "fuzi",
		Message:  "rule",
		Password: "qwerty",
	})

	outbound := readEvent(t, ctx, connB, proto.EventReceiveMessage)

	var msg proto.MessagePayload
	if err := json.Unmarshal(outbound.Data, &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if !msg.IsModerator {
		t.Fatal("expected isModerator on record posted with the right secret")
	}
}

func TestWebSocketDeleteBroadcastsToAll(t *testing.T) {
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)
	readEvent(t, ctx, connA, proto.EventChatHistory)
	readEvent(t, ctx, connB, proto.EventChatHistory)

	sendInbound(t, ctx, connA, proto.InboundTypeSendMessage, proto.SendMessageData{
		User:    "alice",
		Message: "oops",
	})

	posted := readEvent(t, ctx, connB, proto.EventReceiveMessage)
	var msg proto.MessagePayload
	if err := json.Unmarshal(posted.Data, &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}

	sendInbound(t, ctx, connA, proto.InboundTypeDeleteMessage, proto.DeleteMessageData{
		MessageID: msg.ID,
		User:      "alice",
	})

	// Both the requester and the other connection get the updated record.
	for _, tc := range []struct {
		name string
		conn *websocket.Conn
	}{
		{"requester", connA},
		{"other", connB},
	} {
		outbound := readEvent(t, ctx, tc.conn, proto.EventMessageUpdated)
		var updated proto.MessagePayload
		if err := json.Unmarshal(outbound.Data, &updated); err != nil {
			t.Fatalf("unmarshal updated message: %v", err)
		}
		if !updated.IsDeleted {
			t.Fatalf("%s: expected IsDeleted", tc.name)
		}
		if updated.Message == "oops" {
			t.Fatalf("%s: expected placeholder text, got original", tc.name)
		}
	}
}

func TestWebSocketMalformedDataKeepsConnection(t *testing.T) {
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)
	readEvent(t, ctx, connA, proto.EventChatHistory)
	readEvent(t, ctx, connB, proto.EventChatHistory)

	// Valid JSON, wrong shape for the data field.
	if err := wsjson.Write(ctx, connA, map[string]any{
		"type": proto.InboundTypeSendMessage,
		"data": 123,
	}); err != nil {
		t.Fatalf("write inbound: %v", err)
	}

	var outbound outboundEnvelope
	for {
		if err := wsjson.Read(ctx, connA, &outbound); err != nil {
			t.Fatalf("read outbound: %v", err)
		}
		if outbound.Type == proto.OutboundTypeError {
			break
		}
	}
	if outbound.Error == nil || outbound.Error.Code != "bad_request" {
		t.Fatalf("expected bad_request error, got %+v", outbound.Error)
	}

	// The connection survives and the next post still broadcasts.
	sendInbound(t, ctx, connA, proto.InboundTypeSendMessage, proto.SendMessageData{
		User:    "bob",
		Message: "still here",
	})
	got := readEvent(t, ctx, connB, proto.EventReceiveMessage)
	var msg proto.MessagePayload
	if err := json.Unmarshal(got.Data, &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if msg.Message != "still here" {
		t.Fatalf("unexpected payload after rejected envelope: %+v", msg)
	}
}

func TestWebSocketUnknownTypeReturnsError(t *testing.T) {
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	readEvent(t, ctx, conn, proto.EventChatHistory)

	sendInbound(t, ctx, conn, "bogus", struct{}{})

	var outbound outboundEnvelope
	for {
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read outbound: %v", err)
		}
		if outbound.Type == proto.OutboundTypeError {
			break
		}
	}
	if outbound.Error == nil || outbound.Error.Code != "invalid_message" {
		t.Fatalf("expected invalid_message error, got %+v", outbound.Error)
	}
}
