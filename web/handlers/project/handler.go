// Package project exposes project CRUD. Deleting a project that has time
// recorded against it is blocked unless the caller is the designated admin
// account; archiving (isActive=false) is the supported alternative.
package project

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnlaff/ArchTime/core"
	"github.com/johnlaff/ArchTime/core/models"
	"github.com/johnlaff/ArchTime/utils"
	"github.com/johnlaff/ArchTime/web/common"
	"github.com/johnlaff/ArchTime/web/middlewares"
)

const defaultColor = "#6366f1"

type Endpoint struct {
	db         *gorm.DB
	adminEmail string
}

func Register(r *gin.RouterGroup, db *gorm.DB, adminEmail string) {
	endpoint := &Endpoint{db: db, adminEmail: adminEmail}
	r.GET("/projects", endpoint.List)
	r.POST("/projects", endpoint.Create)
	r.PUT("/projects", endpoint.Update)
	r.DELETE("/projects/:id", endpoint.Delete)
}

func (ep *Endpoint) List(c *gin.Context) {
	identity := middlewares.Identity(c)

	projects := make([]models.Project, 0)
	err := ep.db.Where("user_id = ?", identity.UserID).
		Order("is_active DESC").
		Order("name ASC").
		Find(&projects).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, projects)
}

type CreateDTO struct {
	Name       string   `json:"name" binding:"required"`
	ClientName *string  `json:"clientName"`
	HourlyRate *float64 `json:"hourlyRate"`
	Color      *string  `json:"color"`
}

func (ep *Endpoint) Create(c *gin.Context) {
	identity := middlewares.Identity(c)

	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	name := strings.TrimSpace(dto.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'name' is required"))
		return
	}

	project := models.Project{
		ID:       uuid.NewString(),
		UserID:   identity.UserID,
		Name:     name,
		Color:    defaultColor,
		IsActive: true,
	}
	if dto.ClientName != nil && strings.TrimSpace(*dto.ClientName) != "" {
		project.ClientName = utils.Ptr(strings.TrimSpace(*dto.ClientName))
	}
	if dto.HourlyRate != nil {
		project.HourlyRate = dto.HourlyRate
	}
	if dto.Color != nil && *dto.Color != "" {
		project.Color = *dto.Color
	}

	if err := ep.db.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, project)
}

type UpdateDTO struct {
	ID         string   `json:"id" binding:"required"`
	Name       *string  `json:"name"`
	ClientName *string  `json:"clientName"`
	HourlyRate *float64 `json:"hourlyRate"`
	Color      *string  `json:"color"`
	IsActive   *bool    `json:"isActive"`
}

func (ep *Endpoint) Update(c *gin.Context) {
	identity := middlewares.Identity(c)

	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	var project models.Project
	err := ep.db.Where("id = ? AND user_id = ?", dto.ID, identity.UserID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Project not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	if dto.Name != nil && strings.TrimSpace(*dto.Name) != "" {
		project.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.ClientName != nil {
		project.ClientName = utils.Ptr(strings.TrimSpace(*dto.ClientName))
	}
	if dto.HourlyRate != nil {
		project.HourlyRate = dto.HourlyRate
	}
	if dto.Color != nil && *dto.Color != "" {
		project.Color = *dto.Color
	}
	if dto.IsActive != nil {
		project.IsActive = *dto.IsActive
	}

	if err := ep.db.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, project)
}

func (ep *Endpoint) Delete(c *gin.Context) {
	identity := middlewares.Identity(c)
	isAdmin := strings.EqualFold(identity.Email, ep.adminEmail) && ep.adminEmail != ""

	err := core.DeleteProject(ep.db, identity.UserID, c.Param("id"), isAdmin, middlewares.UserAgent(c), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Project not found"))
		case errors.Is(err, core.ErrProjectHasAllocations):
			c.JSON(http.StatusConflict, common.NewErrorResponse(
				"This project has recorded hours and cannot be deleted. Archive it instead."))
		default:
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		}
		return
	}

	c.Status(http.StatusNoContent)
}
