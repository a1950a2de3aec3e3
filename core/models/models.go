package models

import "time"

// ClockEntry sources.
const (
	SourceWeb         = "web"
	SourceOfflineSync = "offline_sync"
	SourceEdited      = "edited"
)

// AuditLog actions.
const (
	ActionClockIn       = "clock_in"
	ActionClockOut      = "clock_out"
	ActionEditEntry     = "edit_entry"
	ActionDeleteEntry   = "delete_entry"
	ActionDeleteProject = "delete_project"
	ActionOfflineSync   = "offline_sync"
)

// ClockEntry is one work session. ClockOut is nil exactly while the entry
// is the user's single open session; TotalMinutes and Hash are set
// atomically at close time.
type ClockEntry struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID       string     `gorm:"type:varchar(36);not null;index" json:"userId"`
	ClockIn      time.Time  `gorm:"not null" json:"clockIn"`
	ClockOut     *time.Time `json:"clockOut"`
	EntryDate    time.Time  `gorm:"not null;index" json:"entryDate"`
	TotalMinutes *int       `json:"totalMinutes"`
	Hash         *string    `gorm:"type:varchar(64)" json:"hash"`
	Source       string     `gorm:"type:varchar(20);not null;default:web" json:"source"`

	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	Allocations []TimeAllocation `gorm:"foreignKey:ClockEntryID" json:"-"`
}

func (ClockEntry) TableName() string {
	return "clock_entries"
}

// TimeAllocation assigns an entry's minutes to a project. Current usage is
// zero or one row per entry; Minutes mirrors the entry's TotalMinutes once
// closed and is 0 while open.
type TimeAllocation struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ClockEntryID string `gorm:"type:varchar(36);not null;index" json:"clockEntryId"`
	ProjectID    string `gorm:"type:varchar(36);not null;index" json:"projectId"`
	Minutes      int    `gorm:"not null;default:0" json:"minutes"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

func (TimeAllocation) TableName() string {
	return "time_allocations"
}

type Project struct {
	ID         string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string   `gorm:"type:varchar(36);not null;index" json:"userId"`
	Name       string   `gorm:"type:varchar(120);not null" json:"name"`
	ClientName *string  `gorm:"type:varchar(120)" json:"clientName"`
	HourlyRate *float64 `json:"hourlyRate"`
	Color      string   `gorm:"type:varchar(9);not null;default:#6366f1" json:"color"`
	IsActive   bool     `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

// AuditLog rows are append-only; nothing in the system updates or deletes
// them. OldData and NewData hold JSON snapshots.
type AuditLog struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	Action    string    `gorm:"type:varchar(20);not null" json:"action"`
	EntityID  string    `gorm:"type:varchar(36);not null" json:"entityId"`
	OldData   *string   `gorm:"type:text" json:"oldData"`
	NewData   string    `gorm:"type:text;not null" json:"newData"`
	UserAgent *string   `gorm:"type:varchar(255)" json:"userAgent"`
	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
