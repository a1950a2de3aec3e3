// Package clock exposes the clock-entry endpoints: interactive open/close,
// edits and deletes of past entries, the active session, daily summary and
// monthly history.
package clock

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/johnlaff/ArchTime/core"
	"github.com/johnlaff/ArchTime/core/models"
	"github.com/johnlaff/ArchTime/utils"
	"github.com/johnlaff/ArchTime/web/common"
	"github.com/johnlaff/ArchTime/web/middlewares"
)

type Endpoint struct {
	db *gorm.DB
}

func Register(r *gin.RouterGroup, db *gorm.DB) {
	endpoint := &Endpoint{db: db}
	r.POST("/clock", endpoint.Open)
	r.PUT("/clock/:id", endpoint.Close)
	r.PATCH("/clock/:id", endpoint.Edit)
	r.DELETE("/clock/:id", endpoint.Delete)
	r.GET("/clock/active", endpoint.Active)
	r.GET("/clock/summary", endpoint.Summary)
	r.GET("/clock/history", endpoint.History)
}

type EntryDTO struct {
	ID           string  `json:"id"`
	ClockIn      string  `json:"clockIn"`
	ClockOut     *string `json:"clockOut"`
	EntryDate    string  `json:"entryDate"`
	TotalMinutes *int    `json:"totalMinutes"`
	Hash         *string `json:"hash"`
	Source       string  `json:"source"`
}

func toEntryDTO(e *models.ClockEntry) EntryDTO {
	dto := EntryDTO{
		ID:           e.ID,
		ClockIn:      utils.ISOString(e.ClockIn),
		EntryDate:    utils.ISOString(e.EntryDate),
		TotalMinutes: e.TotalMinutes,
		Hash:         e.Hash,
		Source:       e.Source,
	}
	if e.ClockOut != nil {
		dto.ClockOut = utils.Ptr(utils.ISOString(*e.ClockOut))
	}
	return dto
}

type OpenDTO struct {
	ProjectID *string `json:"projectId"`
}

func (ep *Endpoint) Open(c *gin.Context) {
	identity := middlewares.Identity(c)

	var dto OpenDTO
	if err := c.ShouldBindJSON(&dto); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	entry, err := core.OpenEntry(ep.db, identity.UserID, dto.ProjectID, time.Now(), middlewares.UserAgent(c))
	if err != nil {
		var conflict *core.OpenEntryExistsError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, common.NewConflictResponse("An entry is already open", conflict.EntryID))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, toEntryDTO(entry))
}

func (ep *Endpoint) Close(c *gin.Context) {
	identity := middlewares.Identity(c)

	entry, err := core.CloseEntry(ep.db, identity.UserID, c.Param("id"), time.Now(), middlewares.UserAgent(c))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Entry not found or already closed"))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, toEntryDTO(entry))
}

type EditDTO struct {
	ClockInTime  string  `json:"clockInTime" binding:"required"`
	ClockOutTime string  `json:"clockOutTime" binding:"required"`
	ProjectID    *string `json:"projectId"`
}

func (ep *Endpoint) Edit(c *gin.Context) {
	identity := middlewares.Identity(c)

	var dto EditDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	entry, err := core.EditEntry(ep.db, identity.UserID, c.Param("id"),
		dto.ClockInTime, dto.ClockOutTime, dto.ProjectID, middlewares.UserAgent(c))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrBadTimeFormat), errors.Is(err, core.ErrInvalidTimeRange):
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		case errors.Is(err, core.ErrNotFound):
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Entry not found"))
		case errors.Is(err, core.ErrEntryStillOpen):
			c.JSON(http.StatusConflict, common.NewErrorResponse("Cannot edit an open entry"))
		default:
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           entry.ID,
		"clockIn":      utils.ISOString(entry.ClockIn),
		"clockOut":     utils.ISOString(*entry.ClockOut),
		"totalMinutes": entry.TotalMinutes,
		"source":       entry.Source,
		"projectId":    dto.ProjectID,
	})
}

func (ep *Endpoint) Delete(c *gin.Context) {
	identity := middlewares.Identity(c)

	err := core.DeleteEntry(ep.db, identity.UserID, c.Param("id"), middlewares.UserAgent(c))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Entry not found"))
		case errors.Is(err, core.ErrEntryStillOpen):
			c.JSON(http.StatusConflict, common.NewErrorResponse("Cannot delete an in-progress session"))
		default:
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (ep *Endpoint) Active(c *gin.Context) {
	identity := middlewares.Identity(c)

	session, err := core.ActiveEntry(ep.db, identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if session == nil {
		// Explicit null, not an empty object: the client checks for it.
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (ep *Endpoint) Summary(c *gin.Context) {
	identity := middlewares.Identity(c)

	summary, err := core.TodaySummary(ep.db, identity.UserID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (ep *Endpoint) History(c *gin.Context) {
	identity := middlewares.Identity(c)

	month := c.Query("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	history, err := core.HistoryForMonth(ep.db, identity.UserID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, history)
}
