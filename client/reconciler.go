package client

import (
	"context"
	"sort"
	"sync"

	v1 "github.com/johnlaff/ArchTime/archtime/v1"
)

// Reconciler drains the pending queue against the server, strictly
// sequentially in event-timestamp order. It stops on the first failure of
// any kind and leaves everything unsent in the queue for the next trigger;
// there is no per-entry retry, the trigger is connectivity-driven.
type Reconciler struct {
	mu      sync.Mutex
	queue   PendingStore
	api     *v1.ArchtimeClient
	applied func(*PendingEntry)
}

func NewReconciler(api *v1.ArchtimeClient, queue PendingStore) *Reconciler {
	return &Reconciler{queue: queue, api: api}
}

// OnApplied registers a callback invoked after each acknowledged entry.
func (r *Reconciler) OnApplied(fn func(*PendingEntry)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = fn
}

// Sync replays all pending entries. Safe to trigger redundantly: calls
// serialize on the mutex, and an entry acknowledged by an earlier pass is
// no longer in the queue. Returns how many entries were applied; err is
// the failure that stopped the drain, if any.
func (r *Reconciler) Sync(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.queue.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	// Chronological order guarantees a clock_in replays before any
	// clock_out that references it, regardless of enqueue order. ISO-8601
	// timestamps compare correctly as strings.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})

	applied := 0
	for _, entry := range entries {
		dto := &v1.PendingEntryDTO{
			ID:        entry.ID,
			Type:      entry.Type,
			Timestamp: entry.Timestamp,
			ProjectID: entry.ProjectID,
			EntryID:   entry.EntryID,
			CreatedAt: entry.CreatedAt,
		}
		if err := r.api.Sync.Apply(dto); err != nil {
			// Server rejection or network loss: stop here so the rest of
			// the queue keeps its order for the next pass.
			return applied, err
		}
		if err := r.queue.Remove(ctx, entry.ID); err != nil {
			return applied, err
		}
		applied++
		if r.applied != nil {
			r.applied(entry)
		}
	}
	return applied, nil
}
