package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// lockTable hands out one logical lock per account number. Locks are created
// lazily and acquired in canonical order (sorted account number) so two
// transfers moving funds in opposite directions between the same pair of
// accounts can never deadlock.
type lockTable struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	timeout time.Duration
}

func newLockTable(timeout time.Duration) *lockTable {
	return &lockTable{
		locks:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (t *lockTable) lockFor(number string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[number]
	if !ok {
		l = make(chan struct{}, 1)
		t.locks[number] = l
	}
	return l
}

// acquire takes the locks for the given account numbers, deduplicated and in
// canonical order. It fails with ErrContention when the bound elapses and
// with the context error when the caller cancels; either way any locks taken
// so far are released before returning.
func (t *lockTable) acquire(ctx context.Context, numbers ...string) (func(), error) {
	ordered := make([]string, 0, len(numbers))
	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	held := make([]chan struct{}, 0, len(ordered))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, n := range ordered {
		l := t.lockFor(n)
		select {
		case l <- struct{}{}:
			held = append(held, l)
		case <-timer.C:
			release()
			return nil, ErrContention
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}
