package pagesession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haikalarif/portofolio-freelance/internal/order"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func decls() []order.AddonDecl {
	return []order.AddonDecl{{ID: "seo", Name: "SEO", Price: 200000}, {ID: "logo", Name: "Logo", Price: 150000}}
}

func TestOpenIssuesFreshRegistries(t *testing.T) {
	t.Parallel()

	store := NewStore()
	first := store.Open(decls())
	require.NoError(t, first.Do(func(r *order.Registry) error {
		r.Toggle(0)
		return nil
	}))

	second := store.Open(decls())
	require.NotEqual(t, first.ID(), second.ID())
	require.Len(t, second.Snapshot(), 2)
	require.False(t, second.Snapshot()[0].Selected)
	require.True(t, first.Snapshot()[0].Selected)
	require.Equal(t, 2, store.Len())
}

func TestGetExpiresIdleSessions(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	store := NewStore(WithTTL(time.Minute), WithClock(clock.Now), WithIDGenerator(func() string { return "page-1" }))
	store.Open(decls())

	clock.Advance(59 * time.Second)
	sess, err := store.Get("page-1")
	require.NoError(t, err)
	require.Equal(t, "page-1", sess.ID())

	clock.Advance(59 * time.Second)
	_, err = store.Get("page-1")
	require.NoError(t, err, "access refreshes the idle timer")

	clock.Advance(time.Minute)
	_, err = store.Get("page-1")
	require.ErrorIs(t, err, ErrUnknownSession)
	require.Zero(t, store.Len())

	_, err = store.Get("missing")
	require.ErrorIs(t, err, ErrUnknownSession)
}

func TestCleanupExpired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	n := 0
	store := NewStore(WithTTL(time.Minute), WithClock(clock.Now), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("page-%d", n)
	}))
	store.Open(decls())
	clock.Advance(45 * time.Second)
	store.Open(decls())

	require.Equal(t, 1, store.CleanupExpired(clock.Now().Add(30*time.Second)))
	require.Equal(t, 1, store.Len())
	_, err := store.Get("page-2")
	require.NoError(t, err)
}

func TestDoSerialisesIntents(t *testing.T) {
	t.Parallel()

	sess := NewStore().Open(decls())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sess.Do(func(r *order.Registry) error {
				r.Toggle(1)
				return nil
			})
		}()
	}
	wg.Wait()
	require.False(t, sess.Snapshot()[1].Selected, "an even number of toggles cancels out")

	boom := errors.New("boom")
	require.ErrorIs(t, sess.Do(func(*order.Registry) error { return boom }), boom)
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()

	store := NewStore(WithTTL(time.Nanosecond))
	store.Open(decls())

	ctx, cancel := context.WithCancel(context.Background())
	var sweeps atomic.Int32
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond, func(int, int) { sweeps.Add(1) })
		close(done)
	}()

	require.Eventually(t, func() bool { return store.Len() == 0 && sweeps.Load() > 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestOpenCapsLiveSessions(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	var n atomic.Int64
	store := NewStore(WithMaxSessions(3), WithClock(clock.Now), WithIDGenerator(func() string {
		return fmt.Sprintf("page-%d", n.Add(1))
	}))

	for i := 0; i < 3; i++ {
		store.Open(decls())
		clock.Advance(time.Second)
	}
	_, err := store.Get("page-1")
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		store.Open(nil)
		require.LessOrEqual(t, store.Len(), 3)
	}
	require.Equal(t, 3, store.Len())

	_, err = store.Get("page-1003")
	require.NoError(t, err)
	_, err = store.Get("page-2")
	require.ErrorIs(t, err, ErrUnknownSession)
}

func TestOpenSweepsExpiredBeforeEvicting(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	var n atomic.Int64
	store := NewStore(WithMaxSessions(2), WithTTL(time.Minute), WithClock(clock.Now), WithIDGenerator(func() string {
		return fmt.Sprintf("page-%d", n.Add(1))
	}))

	store.Open(nil)
	clock.Advance(30 * time.Second)
	store.Open(nil)
	clock.Advance(45 * time.Second)

	store.Open(nil)
	require.Equal(t, 2, store.Len())
	_, err := store.Get("page-2")
	require.NoError(t, err, "the live session survives while the expired one is swept")
	_, err = store.Get("page-1")
	require.ErrorIs(t, err, ErrUnknownSession)
}
