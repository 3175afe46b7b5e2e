package core

import "sync"

// Registry is the set of live connections and the audience selection for
// outbound events: everyone, or everyone except the sender.
type Registry struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[*Client]struct{})}
}

// Add inserts a client. Returns true if newly added.
func (r *Registry) Add(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// Remove deletes a client. Returns true if removed.
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Send delivers an event to a single client.
func (r *Registry) Send(c *Client, event *Event) {
	deliver(c, event)
}

// Broadcast sends an event to every registered client.
func (r *Registry) Broadcast(event *Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for client := range r.clients {
		deliver(client, event)
	}
}

// BroadcastExcept sends an event to every registered client but sender.
func (r *Registry) BroadcastExcept(sender *Client, event *Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for client := range r.clients {
		if client == sender {
			continue
		}
		deliver(client, event)
	}
}

func deliver(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
	}
}
