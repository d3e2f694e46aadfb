// Package counters maintains the per-owner live post count. The counter is
// updated through the store's atomic increment, but it is not coordinated
// with the view writes that justify it: a crash between a view write and
// its counter update leaves the counter permanently off by one. That drift
// is a property of the system, not something this package hides.
package counters

import (
	"errors"
	"strconv"

	"github.com/google/uuid"

	"shiftdb/pkg/store"
	"shiftdb/pkg/views"
)

// Maintainer mutates and reads the counters. Calls are not idempotent:
// every call moves the counter by exactly its delta, and there is no floor
// at zero. Callers must call exactly once per logical event.
type Maintainer struct {
	t store.Store
}

func New(t store.Store) *Maintainer {
	return &Maintainer{t: t}
}

// Increment records one post creation for the owner. The counter row is
// created implicitly on first use.
func (m *Maintainer) Increment(owner uuid.UUID) error {
	return m.t.Increment(views.OwnerCountKey(owner), 1)
}

// Decrement records one post deletion. Decrementing below the true live
// count is allowed and preserved.
func (m *Maintainer) Decrement(owner uuid.UUID) error {
	return m.t.Increment(views.OwnerCountKey(owner), -1)
}

// Add applies an accumulated delta in one store round trip; the backfill
// engine uses this for its per-owner totals.
func (m *Maintainer) Add(owner uuid.UUID, delta int64) error {
	if delta == 0 {
		return nil
	}
	return m.t.Increment(views.OwnerCountKey(owner), delta)
}

// Read returns the owner's counter, or 0 when the owner has no counter row
// yet.
func (m *Maintainer) Read(owner uuid.UUID) (int64, error) {
	b, err := m.t.Get(views.OwnerCountKey(owner))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(string(b), 10, 64)
}
