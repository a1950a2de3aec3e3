package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/johnlaff/ArchTime/archtime/v1"
	"github.com/johnlaff/ArchTime/utils"
)

func offline() bool { return false }

// failingStore reports available storage but fails every write.
type failingStore struct{}

func (failingStore) Enqueue(ctx context.Context, entry *PendingEntry) error {
	return errors.New("disk full")
}
func (failingStore) ListAll(ctx context.Context) ([]*PendingEntry, error) { return nil, nil }
func (failingStore) Remove(ctx context.Context, id string) error          { return nil }
func (failingStore) Available() bool                                      { return true }

func unreachableAPI() *v1.ArchtimeClient {
	return v1.NewArchtimeClient("http://127.0.0.1:1", "token")
}

func TestSessionOfflineClockInQueuesEvent(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	s := NewSession(unreachableAPI(), q, WithConnectivity(offline))
	require.NoError(t, s.ClockIn(ctx, utils.Ptr("proj-1")))

	active := s.Active()
	require.NotNil(t, active)
	assert.Equal(t, PhasePending, s.Phase())

	pending, err := q.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, EventClockIn, pending[0].Type)
	require.NotNil(t, pending[0].EntryID)
	assert.Equal(t, active.ID, *pending[0].EntryID)
	require.NotNil(t, pending[0].ProjectID)
	assert.Equal(t, "proj-1", *pending[0].ProjectID)
}

func TestSessionOfflineClockOutQueuesEvent(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	s := NewSession(unreachableAPI(), q, WithConnectivity(offline))
	require.NoError(t, s.ClockIn(ctx, nil))
	entryID := s.Active().ID

	require.NoError(t, s.ClockOut(ctx))
	assert.Nil(t, s.Active())
	assert.Equal(t, PhasePending, s.Phase())

	pending, err := q.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	var out *PendingEntry
	for _, e := range pending {
		if e.Type == EventClockOut {
			out = e
		}
	}
	require.NotNil(t, out)
	require.NotNil(t, out.EntryID)
	assert.Equal(t, entryID, *out.EntryID)
}

func TestSessionRejectsDoubleClockIn(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	s := NewSession(unreachableAPI(), q, WithConnectivity(offline))
	require.NoError(t, s.ClockIn(ctx, nil))

	err := s.ClockIn(ctx, nil)
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestSessionClockOutWhileIdle(t *testing.T) {
	q, _ := newTestQueue(t)
	s := NewSession(unreachableAPI(), q, WithConnectivity(offline))
	assert.ErrorIs(t, s.ClockOut(context.Background()), ErrNotClockedIn)
}

func TestSessionOfflineWithoutStorageRejects(t *testing.T) {
	s := NewSession(unreachableAPI(), UnavailableQueue{}, WithConnectivity(offline))

	err := s.ClockIn(context.Background(), nil)
	assert.ErrorIs(t, err, ErrQueueUnavailable)
	assert.Nil(t, s.Active())
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestSessionEnqueueFailureRollsBack(t *testing.T) {
	s := NewSession(unreachableAPI(), failingStore{}, WithConnectivity(offline))

	err := s.ClockIn(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, s.Active())
	assert.Equal(t, PhaseRolledBack, s.Phase())
}

func TestSessionOnlineClockIn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
	mux.HandleFunc("/clock", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":        "server-entry-1",
			"clockIn":   "2026-02-10T12:00:00.000Z",
			"entryDate": "2026-02-10T00:00:00.000Z",
			"source":    "web",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	q, _ := newTestQueue(t)
	s := NewSession(v1.NewArchtimeClient(srv.URL, "token"), q)

	require.NoError(t, s.ClockIn(context.Background(), nil))
	assert.Equal(t, PhaseConfirmed, s.Phase())

	active := s.Active()
	require.NotNil(t, active)
	assert.Equal(t, "server-entry-1", active.ID)

	// Nothing queued on the online path.
	pending, err := q.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSessionConfirm(t *testing.T) {
	q, _ := newTestQueue(t)
	s := NewSession(unreachableAPI(), q, WithConnectivity(offline))

	require.NoError(t, s.ClockIn(context.Background(), nil))
	require.Equal(t, PhasePending, s.Phase())

	s.Confirm()
	assert.Equal(t, PhaseConfirmed, s.Phase())

	// Confirm outside a pending transition is a no-op.
	idle := NewSession(unreachableAPI(), q, WithConnectivity(offline))
	idle.Confirm()
	assert.Equal(t, PhaseIdle, idle.Phase())
}

func TestSessionOrphanDetection(t *testing.T) {
	q, _ := newTestQueue(t)
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)

	s := NewSession(unreachableAPI(), q,
		WithConnectivity(offline),
		WithClock(func() time.Time { return now }),
	)

	require.NoError(t, s.Bootstrap(&v1.ActiveSessionDTO{
		ID:      "entry-a",
		ClockIn: "2026-02-10T12:00:00.000Z",
	}, nil))
	assert.True(t, s.IsOrphaned())

	require.NoError(t, s.Bootstrap(&v1.ActiveSessionDTO{
		ID:      "entry-b",
		ClockIn: "2026-02-11T09:00:00.000Z",
	}, nil))
	assert.False(t, s.IsOrphaned())

	require.NoError(t, s.Bootstrap(nil, nil))
	assert.False(t, s.IsOrphaned())
}

func TestSessionResolveOrphan(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)

	s := NewSession(unreachableAPI(), q,
		WithConnectivity(offline),
		WithClock(func() time.Time { return now }),
	)

	require.NoError(t, s.Bootstrap(&v1.ActiveSessionDTO{
		ID:      "entry-a",
		ClockIn: "2026-02-10T12:00:00.000Z",
	}, nil))

	require.NoError(t, s.ResolveOrphan(ctx))
	assert.Nil(t, s.Active())

	pending, err := q.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, EventClockOut, pending[0].Type)
	require.NotNil(t, pending[0].EntryID)
	assert.Equal(t, "entry-a", *pending[0].EntryID)
}

func TestSessionResolveOrphanRejectsSameDay(t *testing.T) {
	q, _ := newTestQueue(t)
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)

	s := NewSession(unreachableAPI(), q,
		WithConnectivity(offline),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, s.Bootstrap(&v1.ActiveSessionDTO{
		ID:      "entry-a",
		ClockIn: "2026-02-11T09:00:00.000Z",
	}, nil))

	assert.ErrorIs(t, s.ResolveOrphan(context.Background()), ErrNotOrphaned)
	assert.NotNil(t, s.Active())
}

func TestSessionBootstrapReplaysQueuedEvents(t *testing.T) {
	q, _ := newTestQueue(t)
	s := NewSession(unreachableAPI(), q, WithConnectivity(offline))

	// Out-of-order slice: the clock_out was enqueued first but happened
	// later. Bootstrap replays by timestamp, landing on an idle state.
	pending := []*PendingEntry{
		{
			ID:        "evt-out",
			Type:      EventClockOut,
			Timestamp: "2026-02-10T20:30:00.000Z",
			EntryID:   utils.Ptr("entry-a"),
		},
		{
			ID:        "entry-a",
			Type:      EventClockIn,
			Timestamp: "2026-02-10T12:00:00.000Z",
			EntryID:   utils.Ptr("entry-a"),
		},
	}
	require.NoError(t, s.Bootstrap(nil, pending))
	assert.Nil(t, s.Active())
	assert.Equal(t, PhasePending, s.Phase())

	// A lone queued clock_in leaves the session optimistically active.
	require.NoError(t, s.Bootstrap(nil, pending[1:]))
	active := s.Active()
	require.NotNil(t, active)
	assert.Equal(t, "entry-a", active.ID)
	assert.Equal(t, PhasePending, s.Phase())
}
