package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/johnlaff/ArchTime/utils"
)

// closedEntry opens and immediately closes a one-hour session at the given
// clock-in instant.
func closedEntry(t *testing.T, db *gorm.DB, userID string, projectID *string, in time.Time) string {
	t.Helper()
	opened, err := OpenEntry(db, userID, projectID, in, nil)
	require.NoError(t, err)
	_, err = CloseEntry(db, userID, opened.ID, in.Add(time.Hour), nil)
	require.NoError(t, err)
	return opened.ID
}

func TestActiveEntry(t *testing.T) {
	db := newTestDB(t)
	project := createProject(t, db, "user-1", "Client A")

	session, err := ActiveEntry(db, "user-1")
	require.NoError(t, err)
	assert.Nil(t, session)

	in := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	opened, err := OpenEntry(db, "user-1", utils.Ptr(project.ID), in, nil)
	require.NoError(t, err)

	session, err = ActiveEntry(db, "user-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, opened.ID, session.ID)
	assert.Equal(t, "2026-02-10T12:00:00.000Z", session.ClockIn)
	require.NotNil(t, session.ProjectName)
	assert.Equal(t, "Client A", *session.ProjectName)

	// Sessions are per-user.
	session, err = ActiveEntry(db, "user-2")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestTodaySummary(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 2, 10, 21, 0, 0, 0, time.UTC)

	closedEntry(t, db, "user-1", nil, time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
	closedEntry(t, db, "user-1", nil, time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC))
	// Yesterday's entry and another user's entry stay out.
	closedEntry(t, db, "user-1", nil, time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC))
	closedEntry(t, db, "user-2", nil, time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
	// An open session is not part of the summary.
	_, err := OpenEntry(db, "user-1", nil, time.Date(2026, 2, 10, 19, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	summary, err := TodaySummary(db, "user-1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SessionCount)
	assert.Equal(t, 120, summary.TotalMinutes)
	require.Len(t, summary.Entries, 2)
	// Most recent first.
	assert.Equal(t, "2026-02-10T15:00:00.000Z", summary.Entries[0].ClockIn)
}

func TestHistoryForMonthBoundaries(t *testing.T) {
	db := newTestDB(t)

	closedEntry(t, db, "user-1", nil, time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC))
	febFirst := closedEntry(t, db, "user-1", nil, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	febLast := closedEntry(t, db, "user-1", nil, time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC))
	closedEntry(t, db, "user-1", nil, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	history, err := HistoryForMonth(db, "user-1", "2026-02")
	require.NoError(t, err)
	assert.Equal(t, 2, history.SessionCount)
	assert.Equal(t, 120, history.TotalMinutes)
	require.Len(t, history.Entries, 2)
	assert.Equal(t, febLast, history.Entries[0].ID)
	assert.Equal(t, febFirst, history.Entries[1].ID)

	_, err = HistoryForMonth(db, "user-1", "02-2026")
	assert.Error(t, err)
}
