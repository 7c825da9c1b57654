package locks

import (
	"context"
	"sync"
	"testing"
	"time"

	"flowcredits-be/internal/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	m := NewManager(100 * time.Millisecond)
	tenant := uuid.New()

	release, err := m.Acquire(context.Background(), tenant)
	require.NoError(t, err)
	release()

	// Reacquirable after release.
	release, err = m.Acquire(context.Background(), tenant)
	require.NoError(t, err)
	release()
}

func TestAcquireTimesOutWithBusy(t *testing.T) {
	m := NewManager(50 * time.Millisecond)
	tenant := uuid.New()

	release, err := m.Acquire(context.Background(), tenant)
	require.NoError(t, err)
	defer release()

	_, err = m.Acquire(context.Background(), tenant)
	assert.ErrorIs(t, err, apperrors.ErrBusy)
}

func TestIndependentTenantsDoNotContend(t *testing.T) {
	m := NewManager(50 * time.Millisecond)

	releaseA, err := m.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := m.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	defer releaseB()
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	m := NewManager(5 * time.Second)
	tenant := uuid.New()

	release, err := m.Acquire(context.Background(), tenant)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = m.Acquire(ctx, tenant)
	assert.ErrorIs(t, err, apperrors.ErrBusy)
}

func TestLockSerializesCriticalSection(t *testing.T) {
	m := NewManager(5 * time.Second)
	tenant := uuid.New()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := m.Acquire(context.Background(), tenant)
			if err != nil {
				return
			}
			defer release()
			// Unsynchronized increment; the lock is the only protection.
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestMapDoesNotLeakEntries(t *testing.T) {
	m := NewManager(time.Second)
	for i := 0; i < 100; i++ {
		release, err := m.Acquire(context.Background(), uuid.New())
		require.NoError(t, err)
		release()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks)
}
