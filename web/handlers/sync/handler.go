// Package sync exposes the reconciliation endpoint offline clients replay
// their queued clock events against.
package sync

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/johnlaff/ArchTime/core"
	"github.com/johnlaff/ArchTime/utils"
	"github.com/johnlaff/ArchTime/web/common"
	"github.com/johnlaff/ArchTime/web/middlewares"
)

type Endpoint struct {
	db *gorm.DB
}

func Register(r *gin.RouterGroup, db *gorm.DB) {
	endpoint := &Endpoint{db: db}
	r.POST("/sync", endpoint.Apply)
}

// PendingEntryDTO mirrors the client's queued entry. Timestamp is the
// client clock at the original action, ISO-8601.
type PendingEntryDTO struct {
	ID        string  `json:"id" binding:"required"`
	Type      string  `json:"type" binding:"required,oneof=clock_in clock_out"`
	Timestamp string  `json:"timestamp" binding:"required"`
	ProjectID *string `json:"projectId"`
	EntryID   *string `json:"entryId"`
	CreatedAt string  `json:"createdAt"`
}

func (ep *Endpoint) Apply(c *gin.Context) {
	identity := middlewares.Identity(c)

	var dto PendingEntryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	ts, err := utils.ParseISOTime(dto.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	event := &core.SyncEvent{
		ID:        dto.ID,
		Type:      dto.Type,
		Timestamp: *ts,
		ProjectID: dto.ProjectID,
		EntryID:   dto.EntryID,
	}

	if err := core.ApplySyncEvent(ep.db, identity.UserID, event, middlewares.UserAgent(c)); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Entry not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
