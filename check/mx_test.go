package check_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/deliverkit/check"
	"github.com/optimode/deliverkit/internal/mxdns"
	"github.com/optimode/deliverkit/types"
)

// mockResolver is a deterministic check.Resolver for tests.
type mockResolver struct {
	mx      mxdns.MXResult
	mxErr   error
	host    mxdns.HostResult
	hostErr error

	mxCalls   atomic.Int64
	hostCalls atomic.Int64
}

func (m *mockResolver) LookupMX(_ context.Context, _ string) (mxdns.MXResult, error) {
	m.mxCalls.Add(1)
	return m.mx, m.mxErr
}

func (m *mockResolver) LookupHost(_ context.Context, _ string) (mxdns.HostResult, error) {
	m.hostCalls.Add(1)
	return m.host, m.hostErr
}

func newMXChecker(r check.Resolver) *check.MXChecker {
	return check.NewMXChecker(check.MXConfig{
		LookupTimeout: time.Second,
		CacheTTL:      time.Minute,
	}, r)
}

func TestMXChecker_RecordsFound(t *testing.T) {
	r := &mockResolver{mx: mxdns.MXResult{
		Records: []types.MXRecord{
			{Host: "mx1.example.com", Priority: 10},
			{Host: "mx2.example.com", Priority: 20},
		},
	}}
	c := newMXChecker(r)

	res := c.Check(context.Background(), "example.com")

	assert.True(t, res.HasMX)
	assert.NoError(t, res.Err)
	assert.Len(t, res.Records, 2)
	assert.Equal(t, "mx1.example.com", res.Records[0].Host)
	assert.Equal(t, int64(0), r.hostCalls.Load(), "no fallback when MX exists")
}

func TestMXChecker_AddressRecordFallback(t *testing.T) {
	r := &mockResolver{
		mx:   mxdns.MXResult{}, // domain exists, publishes no MX
		host: mxdns.HostResult{Found: true},
	}
	c := newMXChecker(r)

	res := c.Check(context.Background(), "example.com")

	assert.True(t, res.HasMX)
	assert.Equal(t, []types.MXRecord{{Host: "example.com", Priority: 0}}, res.Records)
	assert.Equal(t, int64(1), r.hostCalls.Load())
}

func TestMXChecker_NoSuchDomain(t *testing.T) {
	r := &mockResolver{mxErr: mxdns.ErrNotFound}
	c := newMXChecker(r)

	res := c.Check(context.Background(), "no-such-domain.example")

	assert.False(t, res.HasMX)
	assert.NoError(t, res.Err)
	assert.Contains(t, res.Detail, "no such domain")
	assert.Equal(t, int64(0), r.hostCalls.Load(), "NXDOMAIN skips the fallback")
}

func TestMXChecker_NullMX(t *testing.T) {
	r := &mockResolver{mx: mxdns.MXResult{NullMX: true}}
	c := newMXChecker(r)

	res := c.Check(context.Background(), "nomail.example")

	assert.False(t, res.HasMX)
	assert.NoError(t, res.Err)
	assert.Contains(t, res.Detail, "null MX")
	assert.Equal(t, int64(0), r.hostCalls.Load())
}

func TestMXChecker_NoRecordsAtAll(t *testing.T) {
	r := &mockResolver{} // no MX, no address records
	c := newMXChecker(r)

	res := c.Check(context.Background(), "parked.example")

	assert.False(t, res.HasMX)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Records)
}

func TestMXChecker_ResolutionFailure(t *testing.T) {
	r := &mockResolver{mxErr: mxdns.ErrResolutionFailed}
	c := newMXChecker(r)

	res := c.Check(context.Background(), "example.com")

	assert.False(t, res.HasMX)
	assert.ErrorIs(t, res.Err, mxdns.ErrResolutionFailed)
}

func TestMXChecker_Timeout(t *testing.T) {
	r := &mockResolver{mxErr: mxdns.ErrTimeout}
	c := newMXChecker(r)

	res := c.Check(context.Background(), "example.com")

	assert.False(t, res.HasMX)
	assert.ErrorIs(t, res.Err, mxdns.ErrTimeout)
	assert.Contains(t, res.Detail, "timed out")
}

func TestMXChecker_CacheSharedAcrossCalls(t *testing.T) {
	r := &mockResolver{mx: mxdns.MXResult{
		Records: []types.MXRecord{{Host: "mx.example.com", Priority: 10}},
	}}
	c := newMXChecker(r)

	ctx := context.Background()
	first := c.Check(ctx, "example.com")
	second := c.Check(ctx, "example.com")

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), r.mxCalls.Load())
	assert.Equal(t, 1, c.CacheLen())
}
