// Package events fans post-state-change snapshots out to live subscribers.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

const (
	// Per-client buffer. A subscriber that stops reading loses its oldest
	// events instead of growing the queue without bound.
	clientBufferSize = 64
	inputBufferSize  = 1024
)

// Broker is the process-wide event broadcaster. One consumer goroutine drains
// the input queue and copies each event into every subscriber's channel.
// Delivery is at-most-once with no replay.
type Broker struct {
	mu      sync.Mutex
	clients map[int64]chan []byte
	nextID  int64

	input     chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewBroker() *Broker {
	b := &Broker{
		clients: make(map[int64]chan []byte),
		input:   make(chan []byte, inputBufferSize),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	for {
		select {
		case <-b.done:
			return
		case msg := <-b.input:
			b.fanout(msg)
		}
	}
}

func (b *Broker) fanout(msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.clients {
		select {
		case ch <- msg:
		default:
			// Full buffer: evict the oldest event to make room.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- msg:
			default:
			}
			slog.Warn("slow event subscriber, dropped oldest event", "client_id", id)
		}
	}
}

// Publish enqueues a post snapshot for fan-out. Never blocks the caller.
func (b *Broker) Publish(snapshot any) {
	payload, err := json.Marshal(Event{Type: "post_update", Data: snapshot})
	if err != nil {
		slog.Error("failed to encode event", "error", err)
		return
	}

	select {
	case b.input <- payload:
	case <-b.done:
	default:
		slog.Warn("event queue full, dropping event")
	}
}

// Subscribe registers a new client and returns its id and receive channel.
// The channel is closed on Unsubscribe or broker Close.
func (b *Broker) Subscribe() (int64, <-chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan []byte, clientBufferSize)
	b.clients[id] = ch

	slog.Info("event subscriber connected", "client_id", id)
	return id, ch
}

// Unsubscribe removes a client. Safe to call more than once.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[id]; ok {
		delete(b.clients, id)
		close(ch)
		slog.Info("event subscriber disconnected", "client_id", id)
	}
}

// SubscriberCount reports the number of connected clients.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close stops the consumer and disconnects every subscriber. Idempotent.
func (b *Broker) Close() {
	b.closeOnce.Do(func() {
		close(b.done)

		b.mu.Lock()
		defer b.mu.Unlock()
		for id, ch := range b.clients {
			delete(b.clients, id)
			close(ch)
		}
	})
}
