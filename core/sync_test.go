package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnlaff/ArchTime/core/models"
	"github.com/johnlaff/ArchTime/utils"
)

func TestApplySyncOpenIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	project := createProject(t, db, "user-1", "Client A")

	ev := &SyncEvent{
		ID:        "entry-a",
		Type:      models.ActionClockIn,
		Timestamp: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		ProjectID: utils.Ptr(project.ID),
		EntryID:   utils.Ptr("entry-a"),
	}

	require.NoError(t, ApplySyncEvent(db, "user-1", ev, nil))
	// Redelivery of the same event.
	require.NoError(t, ApplySyncEvent(db, "user-1", ev, nil))

	var entries []models.ClockEntry
	require.NoError(t, db.Where("id = ?", "entry-a").Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SourceOfflineSync, entries[0].Source)
	assert.Nil(t, entries[0].ClockOut)
	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), entries[0].EntryDate.UTC())

	var allocCount int64
	require.NoError(t, db.Model(&models.TimeAllocation{}).Where("clock_entry_id = ?", "entry-a").Count(&allocCount).Error)
	assert.EqualValues(t, 1, allocCount)

	// Replays never duplicate audit records.
	assert.EqualValues(t, 1, countAudits(t, db, models.ActionOfflineSync))
}

func TestApplySyncCloseIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	open := &SyncEvent{
		ID:        "entry-a",
		Type:      models.ActionClockIn,
		Timestamp: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		EntryID:   utils.Ptr("entry-a"),
	}
	require.NoError(t, ApplySyncEvent(db, "user-1", open, nil))

	closeEv := &SyncEvent{
		ID:        "evt-out",
		Type:      models.ActionClockOut,
		Timestamp: time.Date(2026, 2, 10, 20, 30, 0, 0, time.UTC),
		EntryID:   utils.Ptr("entry-a"),
	}
	require.NoError(t, ApplySyncEvent(db, "user-1", closeEv, nil))
	require.NoError(t, ApplySyncEvent(db, "user-1", closeEv, nil))

	var entry models.ClockEntry
	require.NoError(t, db.First(&entry, "id = ?", "entry-a").Error)
	require.NotNil(t, entry.ClockOut)
	require.NotNil(t, entry.TotalMinutes)
	assert.Equal(t, 510, *entry.TotalMinutes)
	require.NotNil(t, entry.Hash)
	assert.Len(t, *entry.Hash, 64)
	assert.Equal(t, models.SourceOfflineSync, entry.Source)

	// One audit for the open replay, one for the close.
	assert.EqualValues(t, 2, countAudits(t, db, models.ActionOfflineSync))
}

func TestApplySyncCloseUnknownEntry(t *testing.T) {
	db := newTestDB(t)

	closeEv := &SyncEvent{
		ID:        "evt-out",
		Type:      models.ActionClockOut,
		Timestamp: time.Date(2026, 2, 10, 20, 30, 0, 0, time.UTC),
		EntryID:   utils.Ptr("never-created"),
	}
	assert.ErrorIs(t, ApplySyncEvent(db, "user-1", closeEv, nil), ErrNotFound)

	noRef := &SyncEvent{
		ID:        "evt-out-2",
		Type:      models.ActionClockOut,
		Timestamp: time.Date(2026, 2, 10, 20, 30, 0, 0, time.UTC),
	}
	assert.ErrorIs(t, ApplySyncEvent(db, "user-1", noRef, nil), ErrNotFound)
}

func TestApplySyncCloseForeignEntry(t *testing.T) {
	db := newTestDB(t)

	open := &SyncEvent{
		ID:        "entry-a",
		Type:      models.ActionClockIn,
		Timestamp: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		EntryID:   utils.Ptr("entry-a"),
	}
	require.NoError(t, ApplySyncEvent(db, "user-1", open, nil))

	closeEv := &SyncEvent{
		ID:        "evt-out",
		Type:      models.ActionClockOut,
		Timestamp: time.Date(2026, 2, 10, 20, 30, 0, 0, time.UTC),
		EntryID:   utils.Ptr("entry-a"),
	}
	assert.ErrorIs(t, ApplySyncEvent(db, "user-2", closeEv, nil), ErrNotFound)
}

func TestApplySyncUnknownType(t *testing.T) {
	db := newTestDB(t)
	ev := &SyncEvent{ID: "evt", Type: "pause", Timestamp: time.Now()}
	assert.Error(t, ApplySyncEvent(db, "user-1", ev, nil))
}

func TestApplySyncOpenNormalizesEntryDate(t *testing.T) {
	db := newTestDB(t)

	// 01:30 UTC falls on the previous civil day in the fixed timezone.
	ev := &SyncEvent{
		ID:        "entry-late",
		Type:      models.ActionClockIn,
		Timestamp: time.Date(2026, 3, 1, 1, 30, 0, 0, time.UTC),
		EntryID:   utils.Ptr("entry-late"),
	}
	require.NoError(t, ApplySyncEvent(db, "user-1", ev, nil))

	var entry models.ClockEntry
	require.NoError(t, db.First(&entry, "id = ?", "entry-late").Error)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), entry.EntryDate.UTC())
}
