package core

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/johnlaff/ArchTime/core/models"
	"github.com/johnlaff/ArchTime/utils"
)

// DeleteProject removes a project, its allocations (admin only) and writes
// the audit record in one transaction. Non-admin callers cannot delete a
// project with recorded hours.
func DeleteProject(db *gorm.DB, userID, projectID string, isAdmin bool, userAgent *string, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		err := tx.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var allocationCount int64
		if err := tx.Model(&models.TimeAllocation{}).
			Where("project_id = ?", projectID).
			Count(&allocationCount).Error; err != nil {
			return fmt.Errorf("counting allocations: %w", err)
		}

		if allocationCount > 0 {
			if !isAdmin {
				return ErrProjectHasAllocations
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&models.TimeAllocation{}).Error; err != nil {
				return fmt.Errorf("removing allocations: %w", err)
			}
		}

		if err := tx.Delete(&project).Error; err != nil {
			return fmt.Errorf("deleting project: %w", err)
		}

		return writeAudit(tx, userID, models.ActionDeleteProject, projectID, nil, map[string]any{
			"deletedAt":   utils.ISOString(now),
			"projectName": project.Name,
		}, userAgent)
	})
}
