package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnlaff/ArchTime/core/models"
	"github.com/johnlaff/ArchTime/integrity"
	"github.com/johnlaff/ArchTime/utils"
)

// OpenEntry starts a new session for userID at now. The single-open
// invariant is re-checked inside the same transaction as the insert, so a
// concurrent clock-in cannot slip a second open entry past it.
func OpenEntry(db *gorm.DB, userID string, projectID *string, now time.Time, userAgent *string) (*models.ClockEntry, error) {
	var entry *models.ClockEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.ClockEntry
		err := tx.Where("user_id = ? AND clock_out IS NULL", userID).First(&existing).Error
		if err == nil {
			return &OpenEntryExistsError{EntryID: existing.ID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entry = &models.ClockEntry{
			ID:        uuid.NewString(),
			UserID:    userID,
			ClockIn:   now,
			EntryDate: utils.DayBucket(now),
			Source:    models.SourceWeb,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("creating clock entry: %w", err)
		}

		if projectID != nil && *projectID != "" {
			alloc := &models.TimeAllocation{
				ID:           uuid.NewString(),
				ClockEntryID: entry.ID,
				ProjectID:    *projectID,
				Minutes:      0,
			}
			if err := tx.Create(alloc).Error; err != nil {
				return fmt.Errorf("creating allocation: %w", err)
			}
		}

		return writeAudit(tx, userID, models.ActionClockIn, entry.ID, nil, map[string]any{
			"clockIn":   utils.ISOString(now),
			"projectId": projectID,
		}, userAgent)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CloseEntry closes the caller's open entry id at now, computing minutes
// and the integrity hash atomically with the allocation update and audit
// write. Returns ErrNotFound when the entry is missing, foreign or already
// closed.
func CloseEntry(db *gorm.DB, userID, entryID string, now time.Time, userAgent *string) (*models.ClockEntry, error) {
	var entry models.ClockEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ? AND clock_out IS NULL", entryID, userID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		minutes := utils.CalcDurationMinutes(entry.ClockIn, now)
		hash := integrity.EntryHash(
			utils.ISOString(entry.ClockIn),
			utils.ISOString(now),
			userID,
			utils.ISOString(entry.EntryDate),
		)

		if err := tx.Model(&models.ClockEntry{}).Where("id = ?", entry.ID).Updates(map[string]any{
			"clock_out":     now,
			"total_minutes": minutes,
			"hash":          hash,
		}).Error; err != nil {
			return fmt.Errorf("closing clock entry: %w", err)
		}

		if err := tx.Model(&models.TimeAllocation{}).
			Where("clock_entry_id = ?", entry.ID).
			Update("minutes", minutes).Error; err != nil {
			return fmt.Errorf("updating allocation minutes: %w", err)
		}

		entry.ClockOut = utils.Ptr(now)
		entry.TotalMinutes = utils.Ptr(minutes)
		entry.Hash = utils.Ptr(hash)

		return writeAudit(tx, userID, models.ActionClockOut, entry.ID, nil, map[string]any{
			"clockOut":     utils.ISOString(now),
			"totalMinutes": minutes,
			"hash":         hash,
		}, userAgent)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// EditEntry rewrites a closed entry's times from civil "HH:MM" strings on
// the entry's existing calendar day, recomputes minutes and hash, replaces
// the project allocation and marks the entry edited.
func EditEntry(db *gorm.DB, userID, entryID, clockInTime, clockOutTime string, projectID *string, userAgent *string) (*models.ClockEntry, error) {
	var entry models.ClockEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if entry.ClockOut == nil {
			return ErrEntryStillOpen
		}

		newIn, err := utils.CombineDayAndClock(entry.EntryDate, clockInTime, utils.BrasiliaTZ)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrBadTimeFormat, clockInTime)
		}
		newOut, err := utils.CombineDayAndClock(entry.EntryDate, clockOutTime, utils.BrasiliaTZ)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrBadTimeFormat, clockOutTime)
		}
		if !newOut.After(newIn) {
			return ErrInvalidTimeRange
		}

		oldData := map[string]any{
			"clockIn":      utils.ISOString(entry.ClockIn),
			"clockOut":     utils.ISOString(*entry.ClockOut),
			"totalMinutes": entry.TotalMinutes,
			"hash":         entry.Hash,
		}

		minutes := utils.CalcDurationMinutes(newIn, newOut)
		hash := integrity.EntryHash(
			utils.ISOString(newIn),
			utils.ISOString(newOut),
			userID,
			utils.ISOString(entry.EntryDate),
		)

		if err := tx.Model(&models.ClockEntry{}).Where("id = ?", entry.ID).Updates(map[string]any{
			"clock_in":      newIn,
			"clock_out":     newOut,
			"total_minutes": minutes,
			"hash":          hash,
			"source":        models.SourceEdited,
		}).Error; err != nil {
			return fmt.Errorf("updating clock entry: %w", err)
		}

		// The allocation is replaced wholesale: removing the project is a
		// valid edit.
		if err := tx.Where("clock_entry_id = ?", entry.ID).Delete(&models.TimeAllocation{}).Error; err != nil {
			return fmt.Errorf("removing allocation: %w", err)
		}
		if projectID != nil && *projectID != "" {
			alloc := &models.TimeAllocation{
				ID:           uuid.NewString(),
				ClockEntryID: entry.ID,
				ProjectID:    *projectID,
				Minutes:      minutes,
			}
			if err := tx.Create(alloc).Error; err != nil {
				return fmt.Errorf("creating allocation: %w", err)
			}
		}

		entry.ClockIn = newIn
		entry.ClockOut = utils.Ptr(newOut)
		entry.TotalMinutes = utils.Ptr(minutes)
		entry.Hash = utils.Ptr(hash)
		entry.Source = models.SourceEdited

		return writeAudit(tx, userID, models.ActionEditEntry, entry.ID, oldData, map[string]any{
			"clockIn":      utils.ISOString(newIn),
			"clockOut":     utils.ISOString(newOut),
			"totalMinutes": minutes,
			"hash":         hash,
			"projectId":    projectID,
		}, userAgent)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes a closed entry and its allocation. Open sessions
// cannot be deleted.
func DeleteEntry(db *gorm.DB, userID, entryID string, userAgent *string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var entry models.ClockEntry
		err := tx.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if entry.ClockOut == nil {
			return ErrEntryStillOpen
		}

		if err := tx.Where("clock_entry_id = ?", entry.ID).Delete(&models.TimeAllocation{}).Error; err != nil {
			return fmt.Errorf("removing allocation: %w", err)
		}
		if err := tx.Delete(&entry).Error; err != nil {
			return fmt.Errorf("deleting clock entry: %w", err)
		}

		return writeAudit(tx, userID, models.ActionDeleteEntry, entry.ID, nil, map[string]any{
			"deletedAt": utils.ISOString(time.Now()),
		}, userAgent)
	})
}
