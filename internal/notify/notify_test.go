package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditchain/internal/domain"
)

func TestBroker_FanOut(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	a := &domain.Attestation{ID: "a1", TenantID: "t1"}
	b.AttestationCreated(context.Background(), a)

	assert.Same(t, a, <-ch1)
	assert.Same(t, a, <-ch2)
}

func TestBroker_CancelClosesChannel(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch, cancel := b.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Cancel is safe to call twice, and publishing to no subscribers is a
	// no-op.
	cancel()
	b.AttestationCreated(context.Background(), &domain.Attestation{ID: "a1"})
}

func TestBroker_SlowSubscriberDrops(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch, cancel := b.Subscribe()
	defer cancel()

	// Overfill the buffer; the publisher must never block.
	for i := 0; i < 40; i++ {
		b.AttestationCreated(context.Background(), &domain.Attestation{ID: "a"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	require.Equal(t, 16, received, "buffer holds exactly its capacity, the rest is dropped")
}
