package bus

import (
	"log"
	"sync"

	"github.com/haricheung/signals/internal/types"
)

const (
	subscriberBufSize = 64
	tapBufSize        = 256
)

// Bus is the observable message bus. The host publishes every lifecycle
// change, interaction, effect request and verdict through it; the puzzle
// core never reads from it. The Auditor receives a read-only tap channel
// for every message published.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[types.MessageType][]chan types.Message
	tapCh       chan types.Message
	closed      bool
}

// New creates a new Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[types.MessageType][]chan types.Message),
		tapCh:       make(chan types.Message, tapBufSize),
	}
}

// Publish fans out msg to all subscribers of msg.Type and to the tap channel.
// Non-blocking: if a subscriber's channel is full, the message is dropped with a warning.
func (b *Bus) Publish(msg types.Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for _, ch := range b.subscribers[msg.Type] {
		select {
		case ch <- msg:
		default:
			log.Printf("[BUS] WARNING: subscriber channel full for type=%s session=%s — message dropped", msg.Type, msg.SessionID)
		}
	}

	// Send to tap (auditor). Non-blocking to avoid auditor backpressure stalling the host.
	select {
	case b.tapCh <- msg:
	default:
		log.Printf("[BUS] WARNING: tap channel full — audit message dropped type=%s", msg.Type)
	}
}

// Subscribe returns a receive-only channel that delivers messages of type t.
// Each call creates a new independent subscriber channel.
func (b *Bus) Subscribe(t types.MessageType) <-chan types.Message {
	ch := make(chan types.Message, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[t] = append(b.subscribers[t], ch)
	b.mu.Unlock()
	return ch
}

// Tap returns the read-only tap channel for the Auditor.
// Only one consumer should call this; calling it multiple times returns the same channel.
func (b *Bus) Tap() <-chan types.Message {
	return b.tapCh
}

// Close closes every subscriber channel and the tap so consumers drain and
// exit. Publish after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	close(b.tapCh)
}
