package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	v1 "github.com/johnlaff/ArchTime/archtime/v1"
	"github.com/johnlaff/ArchTime/utils"
)

var (
	ErrAlreadyClockedIn = errors.New("a session is already active")
	ErrNotClockedIn     = errors.New("no active session")
	ErrNotOrphaned      = errors.New("active session is not orphaned")
)

// Phase tracks the optimistic transition lifecycle: the UI state is updated
// before server confirmation, so both halves are observable.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePending    Phase = "pending"
	PhaseConfirmed  Phase = "confirmed"
	PhaseRolledBack Phase = "rolled_back"
)

// ActiveSession mirrors the server's view of the open entry, or the
// optimistic local view while offline.
type ActiveSession struct {
	ID           string
	ClockIn      time.Time
	ProjectID    *string
	ProjectName  *string
	ProjectColor *string
}

// Session is the clock state machine: Idle (no open entry) or Active (one
// open entry). Transitions pick the online or offline path based on the
// connectivity probe.
type Session struct {
	mu     sync.Mutex
	api    *v1.ArchtimeClient
	queue  PendingStore
	online func() bool
	notify Notifier
	now    func() time.Time

	active *ActiveSession
	phase  Phase
}

type SessionOption func(*Session)

// WithClock overrides the time source.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithConnectivity overrides the online probe.
func WithConnectivity(online func() bool) SessionOption {
	return func(s *Session) { s.online = online }
}

// WithNotifier overrides the transition notifier.
func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) { s.notify = n }
}

func NewSession(api *v1.ArchtimeClient, queue PendingStore, opts ...SessionOption) *Session {
	s := &Session{
		api:    api,
		queue:  queue,
		online: api.Ping,
		notify: NopNotifier{},
		now:    time.Now,
		phase:  PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Active returns a copy of the current session, nil when idle.
func (s *Session) Active() *ActiveSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	copied := *s.active
	return &copied
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// ClockIn starts a session. Online: server-issued id and timestamp.
// Offline: locally generated id, event queued, optimistic transition.
// Failures keep the prior state.
func (s *Session) ClockIn(ctx context.Context, projectID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return ErrAlreadyClockedIn
	}

	if s.online() {
		entry, err := s.api.Clock.ClockIn(projectID)
		if err != nil {
			s.notify.Error("Clock in failed", err.Error())
			return err
		}
		clockIn, perr := utils.ParseISOTime(entry.ClockIn)
		if perr != nil {
			return fmt.Errorf("parsing server clock-in time: %w", perr)
		}
		s.active = &ActiveSession{ID: entry.ID, ClockIn: *clockIn, ProjectID: projectID}
		s.phase = PhaseConfirmed
		s.notify.Success("Clocked in", "Entry recorded")
		return nil
	}

	if !s.queue.Available() {
		s.notify.Error("Clock in failed", "offline and no durable storage")
		return ErrQueueUnavailable
	}

	id := uuid.NewString()
	now := s.now()
	timestamp := utils.ISOString(now)

	// Optimistic: state reflects the new session before the event is
	// durably queued; a failed enqueue rolls it back.
	s.active = &ActiveSession{ID: id, ClockIn: now, ProjectID: projectID}
	s.phase = PhasePending

	err := s.queue.Enqueue(ctx, &PendingEntry{
		ID:        id,
		Type:      EventClockIn,
		Timestamp: timestamp,
		ProjectID: projectID,
		EntryID:   utils.Ptr(id),
		CreatedAt: timestamp,
	})
	if err != nil {
		s.active = nil
		s.phase = PhaseRolledBack
		s.notify.Error("Clock in failed", err.Error())
		return err
	}

	s.notify.Warning("Clocked in offline", "Entry queued; it will sync on reconnect")
	return nil
}

// ClockOut ends the active session.
func (s *Session) ClockOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return ErrNotClockedIn
	}

	if s.online() {
		if _, err := s.api.Clock.ClockOut(s.active.ID); err != nil {
			s.notify.Error("Clock out failed", err.Error())
			return err
		}
		s.active = nil
		s.phase = PhaseConfirmed
		s.notify.Success("Clocked out", "Entry closed")
		return nil
	}

	if !s.queue.Available() {
		s.notify.Error("Clock out failed", "offline and no durable storage")
		return ErrQueueUnavailable
	}

	entryID := s.active.ID
	timestamp := utils.ISOString(s.now())
	prior := s.active

	s.active = nil
	s.phase = PhasePending

	err := s.queue.Enqueue(ctx, &PendingEntry{
		ID:        uuid.NewString(),
		Type:      EventClockOut,
		Timestamp: timestamp,
		EntryID:   utils.Ptr(entryID),
		CreatedAt: timestamp,
	})
	if err != nil {
		s.active = prior
		s.phase = PhaseRolledBack
		s.notify.Error("Clock out failed", err.Error())
		return err
	}

	s.notify.Warning("Clocked out offline", "Entry queued; it will sync on reconnect")
	return nil
}

// Confirm marks an earlier optimistic transition as applied server-side.
// The reconciler calls it after a successful drain.
func (s *Session) Confirm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhasePending {
		s.phase = PhaseConfirmed
	}
}

// IsOrphaned reports whether the active session's clock-in calendar day (in
// the fixed civil timezone) has passed.
func (s *Session) IsOrphaned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return false
	}
	return utils.LocalDate(s.active.ClockIn) != utils.LocalDate(s.now())
}

// ResolveOrphan force-closes an orphaned session at the current instant.
// Only an explicit user action reaches here; orphans are never auto-closed.
func (s *Session) ResolveOrphan(ctx context.Context) error {
	if !s.IsOrphaned() {
		return ErrNotOrphaned
	}
	return s.ClockOut(ctx)
}

// Bootstrap rebuilds local state from the server's active session (may be
// nil when offline or idle) plus any still-queued events replayed in
// timestamp order.
func (s *Session) Bootstrap(server *v1.ActiveSessionDTO, pending []*PendingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = nil
	s.phase = PhaseIdle

	if server != nil {
		clockIn, err := utils.ParseISOTime(server.ClockIn)
		if err != nil {
			return fmt.Errorf("parsing active session clock-in: %w", err)
		}
		s.active = &ActiveSession{
			ID:           server.ID,
			ClockIn:      *clockIn,
			ProjectID:    server.ProjectID,
			ProjectName:  server.ProjectName,
			ProjectColor: server.ProjectColor,
		}
		s.phase = PhaseConfirmed
	}

	sorted := make([]*PendingEntry, len(pending))
	copy(sorted, pending)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	for _, entry := range sorted {
		switch entry.Type {
		case EventClockIn:
			clockIn, err := utils.ParseISOTime(entry.Timestamp)
			if err != nil {
				return fmt.Errorf("parsing queued clock-in: %w", err)
			}
			id := entry.ID
			if entry.EntryID != nil {
				id = *entry.EntryID
			}
			s.active = &ActiveSession{ID: id, ClockIn: *clockIn, ProjectID: entry.ProjectID}
			s.phase = PhasePending
		case EventClockOut:
			if s.active != nil && entry.EntryID != nil && *entry.EntryID == s.active.ID {
				s.active = nil
				s.phase = PhasePending
			}
		}
	}
	return nil
}
