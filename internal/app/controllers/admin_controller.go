package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/app/models/dto"
	"github.com/cpne/stages/internal/app/services"
	"github.com/cpne/stages/internal/middleware"
	"github.com/cpne/stages/internal/pkg/apperrors"
)

// AdminService holds the administration actions that keep the domain invariants
type AdminService interface {
	CreateKlass(ctx context.Context, klass *models.Klass) error
	DeleteKlass(ctx context.Context, id int64) error
	DeleteTeacher(ctx context.Context, id int64) error
	CreateCorporation(ctx context.Context, in services.CreateCorporationInput) (*models.Corporation, error)
	DeleteCorporation(ctx context.Context, id int64) error
	SetStudentArchived(ctx context.Context, id int64, archived bool) (*models.Student, error)
	CreatePeriod(ctx context.Context, in services.CreatePeriodInput) (*models.Period, error)
	CreateAvailabilities(ctx context.Context, in services.CreateAvailabilitiesInput) ([]*models.Availability, error)
}

// AdminController handles the administration actions
type AdminController struct {
	adminService AdminService
	location     *time.Location
}

// NewAdminController creates a new AdminController. Posted dates are read in loc.
func NewAdminController(adminService AdminService, loc *time.Location) *AdminController {
	return &AdminController{
		adminService: adminService,
		location:     loc,
	}
}

// CreateKlass handles klass creation
func (c *AdminController) CreateKlass(ctx *gin.Context) {
	var req dto.CreateKlassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, "Données de classe invalides", err)
		return
	}

	klass := &models.Klass{Name: req.Name, SectionID: req.SectionID, LevelID: req.LevelID, TeacherID: req.TeacherID}
	if err := c.adminService.CreateKlass(ctx, klass); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(klass))
}

// DeleteKlass handles klass deletion
func (c *AdminController) DeleteKlass(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.adminService.DeleteKlass(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Classe supprimée"}))
}

// DeleteTeacher handles teacher deletion
func (c *AdminController) DeleteTeacher(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.adminService.DeleteTeacher(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Enseignant supprimé"}))
}

// CreateCorporation handles corporation creation
func (c *AdminController) CreateCorporation(ctx *gin.Context) {
	var req dto.CreateCorporationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, "Données d'institution invalides", err)
		return
	}

	corp, err := c.adminService.CreateCorporation(ctx, services.CreateCorporationInput{
		Name: req.Name, ShortName: req.ShortName, District: req.District, ParentID: req.ParentID,
		Sector: req.Sector, Typ: req.Typ, Street: req.Street, PCode: req.PCode, City: req.City,
		Tel: req.Tel, Email: req.Email, Web: req.Web,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(corp))
}

// DeleteCorporation handles corporation deletion
func (c *AdminController) DeleteCorporation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.adminService.DeleteCorporation(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Institution supprimée"}))
}

// ArchiveStudent archives or reactivates a student
func (c *AdminController) ArchiveStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ArchiveStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, "Indication d'archivage manquante", err)
		return
	}

	student, err := c.adminService.SetStudentArchived(ctx, id, *req.Archived)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student))
}

// CreatePeriod handles period creation
func (c *AdminController) CreatePeriod(ctx *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, "Données de période invalides", err)
		return
	}
	start, errStart := time.ParseInLocation(time.DateOnly, req.StartDate, c.location)
	end, errEnd := time.ParseInLocation(time.DateOnly, req.EndDate, c.location)
	if errStart != nil || errEnd != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("Les dates doivent avoir la forme AAAA-MM-JJ"))
		return
	}

	period, err := c.adminService.CreatePeriod(ctx, services.CreatePeriodInput{
		Title: req.Title, SectionID: req.SectionID, LevelID: req.LevelID, StartDate: start, EndDate: end,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(period))
}

// CreateAvailabilities creates several identical availabilities at once
func (c *AdminController) CreateAvailabilities(ctx *gin.Context) {
	var req dto.CreateAvailabilitiesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, "Données de disponibilité invalides", err)
		return
	}

	created, err := c.adminService.CreateAvailabilities(ctx, services.CreateAvailabilitiesInput{
		CorporationID: req.CorporationID, PeriodID: req.PeriodID, DomainID: req.DomainID,
		ContactID: req.ContactID, Priority: req.Priority, Comment: req.Comment, Count: req.Count,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ids := make([]int64, 0, len(created))
	for _, a := range created {
		ids = append(ids, a.ID)
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.CreatedIDsResponse{IDs: ids}))
}
