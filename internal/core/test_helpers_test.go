package core

import (
	"context"
	"testing"
	"time"

	"github.com/fuzichat/fuzichat-server/internal/auth"
	"github.com/fuzichat/fuzichat-server/internal/store"
	"github.com/fuzichat/fuzichat-server/internal/store/sqlite"
)

func newTestStore(t *testing.T) store.MessageStore {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func startTestHub(t *testing.T, st store.MessageStore, opts Options) *Hub {
	t.Helper()

	hub := NewHub(st, auth.NewAuthorizer("fuzi", "qwerty"), opts, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

func connect(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	client := NewClient(id)
	hub.RegisterClient(client)
	t.Cleanup(func() { close(client.Commands) })
	return client
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v received: %+v", kind, ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}
