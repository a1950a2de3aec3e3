package core

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnlaff/ArchTime/core/models"
	"github.com/johnlaff/ArchTime/utils"
)

// writeAudit appends one audit record inside the caller's transaction.
// oldData may be nil for create/close actions.
func writeAudit(tx *gorm.DB, userID, action, entityID string, oldData, newData any, userAgent *string) error {
	record := &models.AuditLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		EntityID:  entityID,
		UserAgent: userAgent,
	}

	if oldData != nil {
		b, err := json.Marshal(oldData)
		if err != nil {
			return fmt.Errorf("marshalling audit old data: %w", err)
		}
		record.OldData = utils.Ptr(string(b))
	}

	b, err := json.Marshal(newData)
	if err != nil {
		return fmt.Errorf("marshalling audit new data: %w", err)
	}
	record.NewData = string(b)

	if err := tx.Create(record).Error; err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}
