// Package notify provides in-process attestation notification fan-out.
package notify

import (
	"context"
	"sync"

	"auditchain/internal/domain"
)

var _ domain.Notifier = (*Broker)(nil)

// Broker fans newly created attestations out to in-process subscribers over
// buffered channels. A slow subscriber drops messages rather than blocking
// the producer; attestation creation must never stall on a consumer.
type Broker struct {
	mu   sync.RWMutex
	subs map[int]chan *domain.Attestation
	next int
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan *domain.Attestation)}
}

// Subscribe registers a subscriber and returns its channel plus a cancel
// function. The channel is closed on cancel.
func (b *Broker) Subscribe() (<-chan *domain.Attestation, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan *domain.Attestation, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// AttestationCreated publishes a new attestation to all subscribers.
func (b *Broker) AttestationCreated(_ context.Context, a *domain.Attestation) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- a:
		default: // drop for slow subscribers
		}
	}
}
