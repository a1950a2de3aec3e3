package core

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/johnlaff/ArchTime/core/models"
	"github.com/johnlaff/ArchTime/utils"
)

type ActiveSession struct {
	ID           string  `json:"id"`
	ClockIn      string  `json:"clockIn"`
	ProjectID    *string `json:"projectId"`
	ProjectName  *string `json:"projectName"`
	ProjectColor *string `json:"projectColor"`
}

type SummaryEntry struct {
	ID           string  `json:"id"`
	ClockIn      string  `json:"clockIn"`
	ClockOut     *string `json:"clockOut"`
	TotalMinutes *int    `json:"totalMinutes"`
	ProjectName  *string `json:"projectName"`
	ProjectColor *string `json:"projectColor"`
}

type DailySummary struct {
	TotalMinutes int            `json:"totalMinutes"`
	SessionCount int            `json:"sessionCount"`
	Entries      []SummaryEntry `json:"entries"`
}

type HistoryEntry struct {
	ID           string  `json:"id"`
	ClockIn      string  `json:"clockIn"`
	ClockOut     string  `json:"clockOut"`
	TotalMinutes *int    `json:"totalMinutes"`
	ProjectID    *string `json:"projectId"`
	ProjectName  *string `json:"projectName"`
	ProjectColor *string `json:"projectColor"`
	EntryDate    string  `json:"entryDate"`
	Source       string  `json:"source"`
}

type MonthHistory struct {
	Entries      []HistoryEntry `json:"entries"`
	TotalMinutes int            `json:"totalMinutes"`
	SessionCount int            `json:"sessionCount"`
}

// ActiveEntry returns the caller's open session, or nil when idle.
func ActiveEntry(db *gorm.DB, userID string) (*ActiveSession, error) {
	var entry models.ClockEntry
	err := db.Preload("Allocations.Project").
		Where("user_id = ? AND clock_out IS NULL", userID).
		Order("clock_in DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session := &ActiveSession{
		ID:      entry.ID,
		ClockIn: utils.ISOString(entry.ClockIn),
	}
	if len(entry.Allocations) > 0 {
		alloc := entry.Allocations[0]
		session.ProjectID = utils.Ptr(alloc.ProjectID)
		session.ProjectName = utils.Ptr(alloc.Project.Name)
		session.ProjectColor = utils.Ptr(alloc.Project.Color)
	}
	return session, nil
}

// TodaySummary lists today's closed entries (most recent 10) with totals.
func TodaySummary(db *gorm.DB, userID string, now time.Time) (*DailySummary, error) {
	var entries []models.ClockEntry
	err := db.Preload("Allocations.Project").
		Where("user_id = ? AND entry_date = ? AND clock_out IS NOT NULL", userID, utils.DayBucket(now)).
		Order("clock_in DESC").
		Limit(10).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{Entries: make([]SummaryEntry, 0, len(entries))}
	for _, e := range entries {
		item := SummaryEntry{
			ID:           e.ID,
			ClockIn:      utils.ISOString(e.ClockIn),
			TotalMinutes: e.TotalMinutes,
		}
		if e.ClockOut != nil {
			item.ClockOut = utils.Ptr(utils.ISOString(*e.ClockOut))
		}
		if len(e.Allocations) > 0 {
			item.ProjectName = utils.Ptr(e.Allocations[0].Project.Name)
			item.ProjectColor = utils.Ptr(e.Allocations[0].Project.Color)
		}
		if e.TotalMinutes != nil {
			summary.TotalMinutes += *e.TotalMinutes
		}
		summary.Entries = append(summary.Entries, item)
	}
	summary.SessionCount = len(summary.Entries)
	return summary, nil
}

// HistoryForMonth lists all closed entries whose entry date falls in the
// UTC month range [YYYY-MM-01, next month).
func HistoryForMonth(db *gorm.DB, userID, month string) (*MonthHistory, error) {
	start, end, err := utils.MonthRange(month)
	if err != nil {
		return nil, err
	}

	var entries []models.ClockEntry
	err = db.Preload("Allocations.Project").
		Where("user_id = ? AND entry_date >= ? AND entry_date < ? AND clock_out IS NOT NULL", userID, start, end).
		Order("clock_in DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	history := &MonthHistory{Entries: make([]HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		item := HistoryEntry{
			ID:           e.ID,
			ClockIn:      utils.ISOString(e.ClockIn),
			ClockOut:     utils.ISOString(*e.ClockOut),
			TotalMinutes: e.TotalMinutes,
			EntryDate:    utils.ISOString(e.EntryDate),
			Source:       e.Source,
		}
		if len(e.Allocations) > 0 {
			alloc := e.Allocations[0]
			item.ProjectID = utils.Ptr(alloc.ProjectID)
			item.ProjectName = utils.Ptr(alloc.Project.Name)
			item.ProjectColor = utils.Ptr(alloc.Project.Color)
		}
		if e.TotalMinutes != nil {
			history.TotalMinutes += *e.TotalMinutes
		}
		history.Entries = append(history.Entries, item)
	}
	history.SessionCount = len(history.Entries)
	return history, nil
}
