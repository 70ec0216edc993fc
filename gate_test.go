package deliverkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateSize(g *domainGate) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

func TestDomainGate_SlotsDroppedOnRelease(t *testing.T) {
	g := newDomainGate()
	ctx := context.Background()

	releaseA, err := g.acquire(ctx, "a.example")
	require.NoError(t, err)
	releaseB, err := g.acquire(ctx, "b.example")
	require.NoError(t, err)
	assert.Equal(t, 2, gateSize(g))

	releaseA()
	assert.Equal(t, 1, gateSize(g))
	releaseB()
	assert.Equal(t, 0, gateSize(g))
}

func TestDomainGate_CancelledWaiterDropsRef(t *testing.T) {
	g := newDomainGate()

	release, err := g.acquire(context.Background(), "a.example")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.acquire(ctx, "a.example")
	require.ErrorIs(t, err, context.Canceled)

	// The cancelled waiter must not leave the slot pinned.
	release()
	assert.Equal(t, 0, gateSize(g))
}

func TestDomainGate_SlotSurvivesWhileHeld(t *testing.T) {
	g := newDomainGate()
	ctx := context.Background()

	release1, err := g.acquire(ctx, "a.example")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		release2, err := g.acquire(ctx, "a.example")
		assert.NoError(t, err)
		release2()
		close(done)
	}()

	// The waiter keeps the slot alive across the holder's release.
	assert.Equal(t, 1, gateSize(g))
	release1()
	<-done
	assert.Equal(t, 0, gateSize(g))
}
