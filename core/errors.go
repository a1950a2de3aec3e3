package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers entries and projects that don't exist or belong
	// to another user.
	ErrNotFound = errors.New("not found")

	// ErrEntryStillOpen rejects edit/delete of an in-progress session.
	ErrEntryStillOpen = errors.New("entry is still open")

	// ErrInvalidTimeRange rejects edits where clock-out would not be
	// strictly after clock-in.
	ErrInvalidTimeRange = errors.New("clock out must be after clock in")

	// ErrBadTimeFormat rejects wall-clock inputs that are not "HH:MM".
	ErrBadTimeFormat = errors.New("invalid time format")

	// ErrProjectHasAllocations blocks deleting a project that has time
	// recorded against it.
	ErrProjectHasAllocations = errors.New("project has time allocations")
)

// OpenEntryExistsError is returned when a clock-in finds an open session
// already in place. It carries the open entry's id so the client can
// reconcile.
type OpenEntryExistsError struct {
	EntryID string
}

func (e *OpenEntryExistsError) Error() string {
	return fmt.Sprintf("an open entry already exists: %s", e.EntryID)
}
