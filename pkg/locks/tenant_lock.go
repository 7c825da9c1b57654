package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"flowcredits-be/internal/apperrors"

	"github.com/google/uuid"
)

// Manager serializes the balance-check-and-mutate critical section per tenant.
// Independent tenants never contend. Acquisition is bounded: a caller that
// cannot take the tenant's lock within the timeout gets ErrBusy instead of
// blocking indefinitely.
type Manager struct {
	mu      sync.Mutex
	locks   map[uuid.UUID]*tenantLock
	timeout time.Duration
}

type tenantLock struct {
	ch   chan struct{} // capacity 1; holding the token means holding the lock
	refs int
}

func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		locks:   make(map[uuid.UUID]*tenantLock),
		timeout: timeout,
	}
}

// Acquire takes the tenant's lock or fails with ErrBusy after the configured
// timeout. On success the returned function releases the lock; it must be
// called exactly once, typically deferred.
func (m *Manager) Acquire(ctx context.Context, tenantId uuid.UUID) (func(), error) {
	m.mu.Lock()
	tl, ok := m.locks[tenantId]
	if !ok {
		tl = &tenantLock{ch: make(chan struct{}, 1)}
		m.locks[tenantId] = tl
	}
	tl.refs++
	m.mu.Unlock()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case tl.ch <- struct{}{}:
		return func() {
			<-tl.ch
			m.put(tenantId, tl)
		}, nil
	case <-timer.C:
		m.put(tenantId, tl)
		return nil, fmt.Errorf("%w: lock not acquired within %s", apperrors.ErrBusy, m.timeout)
	case <-ctx.Done():
		m.put(tenantId, tl)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBusy, ctx.Err())
	}
}

// put drops one reference and evicts the entry once nobody waits on it, so the
// map does not grow with the number of tenants ever seen.
func (m *Manager) put(tenantId uuid.UUID, tl *tenantLock) {
	m.mu.Lock()
	tl.refs--
	if tl.refs == 0 {
		delete(m.locks, tenantId)
	}
	m.mu.Unlock()
}
