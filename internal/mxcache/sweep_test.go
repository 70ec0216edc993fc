package mxcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ExpiredEntriesReaped(t *testing.T) {
	c := New(time.Second, time.Millisecond, func(context.Context, string) (Resolution, error) {
		return Resolution{HasMX: true}, nil
	})

	for i := 0; i < sweepEvery-1; i++ {
		_, err := c.Resolve(context.Background(), fmt.Sprintf("d%d.example", i))
		require.NoError(t, err)
	}
	assert.Equal(t, sweepEvery-1, c.Len())

	// Everything above has a 1ms lifetime; the next insert crosses the
	// sweep boundary and reaps the expired entries.
	time.Sleep(20 * time.Millisecond)
	_, err := c.Resolve(context.Background(), "fresh.example")
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
}

func TestReapExpired_SkipsInFlightLookups(t *testing.T) {
	release := make(chan struct{})
	c := New(time.Second, time.Millisecond, func(ctx context.Context, domain string) (Resolution, error) {
		if domain == "slow.example" {
			<-release
		}
		return Resolution{HasMX: true}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Resolve(ctx, "slow.example")
	require.Error(t, err)

	c.mu.Lock()
	c.reapExpiredLocked()
	n := len(c.entries)
	c.mu.Unlock()

	assert.Equal(t, 1, n, "in-flight entry survives the sweep")
	close(release)
}
