package tablecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"dog-walking-map/pkg/records"
)

// newCache builds a cache with a settable clock.  Moving the returned
// time between requests is safe: the channel round-trip orders the
// write before the cache goroutine reads the clock.
func newCache(ttl time.Duration, loader Loader) (*Cache, *time.Time) {
	c := New(ttl, loader)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }
	return c, &now
}

func countingLoader(calls *int, table records.Table) Loader {
	return func(ctx context.Context) (Snapshot, error) {
		*calls++
		return Snapshot{Table: table}, nil
	}
}

// TestGetServesFromMemoryWithinTTL: two gets inside the window hit the
// loader once.
func TestGetServesFromMemoryWithinTTL(t *testing.T) {
	calls := 0
	table := records.Table{{DogName: "Fido"}}
	c, _ := newCache(300*time.Second, countingLoader(&calls, table))
	defer c.Close()

	for i := 0; i < 2; i++ {
		snap, err := c.Get(context.Background())
		if err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
		if len(snap.Table) != 1 {
			t.Fatalf("Get %d returned %d records, want 1", i, len(snap.Table))
		}
	}
	if calls != 1 {
		t.Errorf("loader ran %d times, want 1", calls)
	}
}

// TestGetReloadsAfterExpiry: moving the clock past the TTL forces a
// reload on the next access.
func TestGetReloadsAfterExpiry(t *testing.T) {
	calls := 0
	c, now := newCache(300*time.Second, countingLoader(&calls, nil))
	defer c.Close()

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(301 * time.Second)
	if _, err := c.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("loader ran %d times, want 2", calls)
	}
}

// TestInvalidateForcesReload: explicit invalidation reloads even inside
// the TTL window.
func TestInvalidateForcesReload(t *testing.T) {
	calls := 0
	c, _ := newCache(300*time.Second, countingLoader(&calls, nil))
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("loader ran %d times, want 2", calls)
	}
}

// TestLoaderFailureNotCached: a failed load surfaces its error with an
// empty snapshot and the next access retries instead of serving the
// failure for the whole TTL.
func TestLoaderFailureNotCached(t *testing.T) {
	calls := 0
	boom := errors.New("sheet unreachable")
	loader := func(ctx context.Context) (Snapshot, error) {
		calls++
		if calls == 1 {
			return Snapshot{}, boom
		}
		return Snapshot{Table: records.Table{{DogName: "Rex"}}}, nil
	}
	c, _ := newCache(300*time.Second, loader)
	defer c.Close()

	ctx := context.Background()
	snap, err := c.Get(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("first Get error = %v, want %v", err, boom)
	}
	if len(snap.Table) != 0 || snap.Store != nil {
		t.Fatalf("failed load returned non-empty snapshot: %+v", snap)
	}
	snap, err = c.Get(ctx)
	if err != nil || len(snap.Table) != 1 {
		t.Fatalf("second Get = (%v, %v), want recovery", snap.Table, err)
	}
	if calls != 2 {
		t.Errorf("loader ran %d times, want 2", calls)
	}
}

// TestClosedCacheRefuses: operations after Close fail fast instead of
// blocking on a dead goroutine.
func TestClosedCacheRefuses(t *testing.T) {
	c := New(time.Second, func(ctx context.Context) (Snapshot, error) {
		return Snapshot{}, nil
	})
	c.Close()
	c.Close() // idempotent
	if _, err := c.Get(context.Background()); err == nil {
		t.Fatal("Get on closed cache succeeded")
	}
}
