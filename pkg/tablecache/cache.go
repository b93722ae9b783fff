// Package tablecache keeps the normalized table in memory for one cache
// window so every interaction does not refetch the sheet.  A dedicated
// goroutine owns the cached snapshot and all access arrives over
// channels, which keeps the state race-free without mutexes.  The cache
// expires on a TTL and can be invalidated explicitly, which a
// successful edit and the manual refresh control both do.
package tablecache

import (
	"context"
	"errors"
	"time"

	"dog-walking-map/pkg/records"
	"dog-walking-map/pkg/sheetstore"
)

var errStopped = errors.New("table cache stopped")

// Snapshot is one load of the feed: the normalized table plus the store
// handle that produced it.  A failed load yields an empty table and a
// nil store, which callers must treat as "no data available" rather
// than "zero matching rows".
type Snapshot struct {
	Table    records.Table
	Store    sheetstore.Store
	LoadedAt time.Time
}

// Loader materialises a fresh snapshot from the persisted store.
type Loader func(ctx context.Context) (Snapshot, error)

type action int

const (
	actGet action = iota
	actInvalidate
)

type request struct {
	act   action
	ctx   context.Context
	reply chan response
}

type response struct {
	snap Snapshot
	err  error
}

// Cache serves snapshots from memory within the TTL and rebuilds them
// through the loader afterwards.
type Cache struct {
	ttl      time.Duration
	loader   Loader
	requests chan request
	quit     chan struct{}
	now      func() time.Time
}

// New starts the cache goroutine.  The clock is injectable for tests;
// production uses time.Now.
func New(ttl time.Duration, loader Loader) *Cache {
	c := &Cache{
		ttl:      ttl,
		loader:   loader,
		requests: make(chan request),
		quit:     make(chan struct{}),
		now:      time.Now,
	}
	go c.loop()
	return c
}

// Close stops the cache goroutine; safe to call more than once.
func (c *Cache) Close() {
	select {
	case <-c.quit:
		return
	default:
	}
	close(c.quit)
}

// Get returns the current snapshot, loading a fresh one when the cached
// copy has expired or was invalidated.  A loader failure is returned to
// the caller together with an empty snapshot and is not cached, so the
// next access retries.
func (c *Cache) Get(ctx context.Context) (Snapshot, error) {
	return c.send(request{act: actGet, ctx: ctx, reply: make(chan response, 1)})
}

// Invalidate discards the cached snapshot so the next Get reloads.
func (c *Cache) Invalidate(ctx context.Context) error {
	_, err := c.send(request{act: actInvalidate, ctx: ctx, reply: make(chan response, 1)})
	return err
}

func (c *Cache) send(req request) (Snapshot, error) {
	select {
	case <-req.ctx.Done():
		return Snapshot{}, req.ctx.Err()
	case <-c.quit:
		return Snapshot{}, errStopped
	case c.requests <- req:
	}
	select {
	case <-req.ctx.Done():
		return Snapshot{}, req.ctx.Err()
	case <-c.quit:
		return Snapshot{}, errStopped
	case resp := <-req.reply:
		return resp.snap, resp.err
	}
}

// loop serialises all cache access inside a single goroutine so the
// snapshot and its expiry can be plain values.
func (c *Cache) loop() {
	var (
		current Snapshot
		valid   bool
		expires time.Time
	)
	for {
		select {
		case <-c.quit:
			return
		case req := <-c.requests:
			switch req.act {
			case actInvalidate:
				valid = false
				req.reply <- response{}
			case actGet:
				now := c.now()
				if valid && now.Before(expires) {
					req.reply <- response{snap: current}
					continue
				}
				snap, err := c.loader(req.ctx)
				if err != nil {
					valid = false
					req.reply <- response{snap: Snapshot{}, err: err}
					continue
				}
				snap.LoadedAt = now
				current = snap
				valid = true
				expires = now.Add(c.ttl)
				req.reply <- response{snap: snap}
			}
		}
	}
}
