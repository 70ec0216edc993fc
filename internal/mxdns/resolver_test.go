package mxdns

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimode/deliverkit/types"
)

// silentNameserver swallows every query without answering and counts
// the packets it received.
func silentNameserver(t *testing.T) (addr string, queries *atomic.Int64) {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pc.Close() })

	queries = new(atomic.Int64)
	go func() {
		buf := make([]byte, 512)
		for {
			if _, _, err := pc.ReadFrom(buf); err != nil {
				return
			}
			queries.Add(1)
		}
	}()
	return pc.LocalAddr().String(), queries
}

func TestLookupMX_TimeoutRetriedOnce(t *testing.T) {
	addr, queries := silentNameserver(t)

	// Caller context equals the resolver budget, as the cache wires it.
	r := New(Config{Nameservers: []string{addr}, Timeout: 800 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()

	_, err := r.LookupMX(ctx, "example.com")

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, int64(2), queries.Load(), "timed-out query gets exactly one retry")
}

func TestSortRecords_ByPriorityThenHost(t *testing.T) {
	records := []types.MXRecord{
		{Host: "mx-b.example.com", Priority: 10},
		{Host: "backup.example.com", Priority: 20},
		{Host: "mx-a.example.com", Priority: 10},
	}

	SortRecords(records)

	assert.Equal(t, []types.MXRecord{
		{Host: "mx-a.example.com", Priority: 10},
		{Host: "mx-b.example.com", Priority: 10},
		{Host: "backup.example.com", Priority: 20},
	}, records)
}

func TestEnsureAbsolute(t *testing.T) {
	assert.Equal(t, "example.com.", ensureAbsolute("example.com"))
	assert.Equal(t, "example.com.", ensureAbsolute("example.com."))
}

func TestNew_Defaults(t *testing.T) {
	r := New(Config{})
	assert.NotEmpty(t, r.cfg.Nameservers)
	assert.NotZero(t, r.cfg.Timeout)
}
