package deliverkit

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/optimode/deliverkit/types"
)

// ValidateBatch fans the addresses out to the pipeline under the
// configured worker cap and collects results in input order. Oversized
// or empty batches are rejected before any per-address work starts; a
// failing address never fails the batch.
func (v *Validator) ValidateBatch(ctx context.Context, emails []string, checkSMTP bool) (types.BatchResult, error) {
	if len(emails) == 0 {
		return types.BatchResult{}, ErrBatchEmpty
	}
	if len(emails) > v.cfg.Batch.MaxSize {
		return types.BatchResult{}, ErrBatchTooLarge
	}

	started := time.Now()

	results := make([]types.ValidationResult, len(emails))
	type job struct {
		idx    int
		email  string
		domain string
	}

	// Sort jobs by domain so addresses sharing a mail server land on
	// the same worker window: the MX cache stays warm and the
	// per-domain probe gate blocks less.
	jobSlice := make([]job, len(emails))
	for i, e := range emails {
		domain := ""
		if at := strings.LastIndex(e, "@"); at >= 0 {
			domain = strings.ToLower(e[at+1:])
		}
		jobSlice[i] = job{idx: i, email: e, domain: domain}
	}
	sort.Slice(jobSlice, func(i, j int) bool {
		return jobSlice[i].domain < jobSlice[j].domain
	})

	jobs := make(chan job, len(jobSlice))
	for _, j := range jobSlice {
		jobs <- j
	}
	close(jobs)

	workers := v.cfg.Batch.Workers
	if workers > len(emails) {
		workers = len(emails)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = v.Validate(ctx, j.email, checkSMTP)
			}
		}()
	}
	wg.Wait()

	return types.BatchResult{
		TotalChecked:     len(results),
		Results:          results,
		ProcessingTimeMS: float64(time.Since(started).Microseconds()) / 1000,
	}, nil
}

// domainGate caps concurrent SMTP probes at one per destination domain.
// Slots are refcounted and dropped once no holder or waiter remains, so
// the map does not grow with every domain ever probed.
type domainGate struct {
	mu    sync.Mutex
	slots map[string]*gateSlot
}

type gateSlot struct {
	sem  chan struct{}
	refs int
}

func newDomainGate() *domainGate {
	return &domainGate{slots: make(map[string]*gateSlot)}
}

// acquire blocks until the domain's slot is free or the context ends.
// The returned release must be called exactly once.
func (g *domainGate) acquire(ctx context.Context, domain string) (func(), error) {
	g.mu.Lock()
	slot, ok := g.slots[domain]
	if !ok {
		slot = &gateSlot{sem: make(chan struct{}, 1)}
		g.slots[domain] = slot
	}
	slot.refs++
	g.mu.Unlock()

	unref := func() {
		g.mu.Lock()
		slot.refs--
		if slot.refs == 0 {
			delete(g.slots, domain)
		}
		g.mu.Unlock()
	}

	select {
	case slot.sem <- struct{}{}:
		return func() {
			<-slot.sem
			unref()
		}, nil
	case <-ctx.Done():
		unref()
		return nil, ctx.Err()
	}
}
