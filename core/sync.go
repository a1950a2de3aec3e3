package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnlaff/ArchTime/core/models"
	"github.com/johnlaff/ArchTime/integrity"
	"github.com/johnlaff/ArchTime/utils"
)

// SyncEvent is one replayed offline action. The id was generated on the
// client while offline; the timestamp is the client clock at the moment the
// action happened, not the replay time.
type SyncEvent struct {
	ID        string
	Type      string
	Timestamp time.Time
	ProjectID *string
	EntryID   *string
}

// ApplySyncEvent merges a replayed event into storage, idempotently:
// a redelivered clock_in whose entry id already exists is a no-op, and a
// redelivered clock_out for an already-closed entry reports success without
// touching anything. Audit records are written only when state actually
// transitioned, so replays never duplicate them.
func ApplySyncEvent(db *gorm.DB, userID string, ev *SyncEvent, userAgent *string) error {
	switch ev.Type {
	case models.ActionClockIn:
		return applySyncOpen(db, userID, ev, userAgent)
	case models.ActionClockOut:
		return applySyncClose(db, userID, ev, userAgent)
	default:
		return fmt.Errorf("unknown sync event type %q", ev.Type)
	}
}

func applySyncOpen(db *gorm.DB, userID string, ev *SyncEvent, userAgent *string) error {
	entryID := ev.ID
	if ev.EntryID != nil && *ev.EntryID != "" {
		entryID = *ev.EntryID
	}

	return db.Transaction(func(tx *gorm.DB) error {
		entry := &models.ClockEntry{
			ID:        entryID,
			UserID:    userID,
			ClockIn:   ev.Timestamp,
			EntryDate: utils.DayBucket(ev.Timestamp),
			Source:    models.SourceOfflineSync,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
		if res.Error != nil {
			return fmt.Errorf("replaying clock_in: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Already applied by an earlier delivery.
			return nil
		}

		if ev.ProjectID != nil && *ev.ProjectID != "" {
			alloc := &models.TimeAllocation{
				ID:           uuid.NewString(),
				ClockEntryID: entryID,
				ProjectID:    *ev.ProjectID,
				Minutes:      0,
			}
			if err := tx.Create(alloc).Error; err != nil {
				return fmt.Errorf("replaying allocation: %w", err)
			}
		}

		return writeAudit(tx, userID, models.ActionOfflineSync, entryID, nil, map[string]any{
			"type":      models.ActionClockIn,
			"clockIn":   utils.ISOString(ev.Timestamp),
			"projectId": ev.ProjectID,
		}, userAgent)
	})
}

func applySyncClose(db *gorm.DB, userID string, ev *SyncEvent, userAgent *string) error {
	if ev.EntryID == nil || *ev.EntryID == "" {
		return ErrNotFound
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var entry models.ClockEntry
		err := tx.Where("id = ? AND user_id = ?", *ev.EntryID, userID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if entry.ClockOut != nil {
			// Already closed — replayed event, report success.
			return nil
		}

		minutes := utils.CalcDurationMinutes(entry.ClockIn, ev.Timestamp)
		hash := integrity.EntryHash(
			utils.ISOString(entry.ClockIn),
			utils.ISOString(ev.Timestamp),
			userID,
			utils.ISOString(entry.EntryDate),
		)

		if err := tx.Model(&models.ClockEntry{}).Where("id = ?", entry.ID).Updates(map[string]any{
			"clock_out":     ev.Timestamp,
			"total_minutes": minutes,
			"hash":          hash,
			"source":        models.SourceOfflineSync,
		}).Error; err != nil {
			return fmt.Errorf("replaying clock_out: %w", err)
		}

		if err := tx.Model(&models.TimeAllocation{}).
			Where("clock_entry_id = ?", entry.ID).
			Update("minutes", minutes).Error; err != nil {
			return fmt.Errorf("updating allocation minutes: %w", err)
		}

		return writeAudit(tx, userID, models.ActionOfflineSync, entry.ID, nil, map[string]any{
			"type":         models.ActionClockOut,
			"clockOut":     utils.ISOString(ev.Timestamp),
			"totalMinutes": minutes,
			"hash":         hash,
		}, userAgent)
	})
}
