package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cpne/stages/internal/app/services"
	"github.com/cpne/stages/internal/middleware"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/helpers"
)

// ExportService builds the XLSX exports
type ExportService interface {
	Stages(ctx context.Context, periodID *int64) (*services.File, error)
	General(ctx context.Context) (*services.File, error)
	Ortra(ctx context.Context) (*services.File, error)
	Imputations(ctx context.Context) (*services.File, error)
}

// ChargeSheetService renders the charge sheets archive
type ChargeSheetService interface {
	Archive(ctx context.Context, teacherIDs []int64) (*services.File, error)
}

// UpdateFormService renders the personal data update forms archive
type UpdateFormService interface {
	Archive(ctx context.Context, returnDate time.Time) (*services.File, error)
}

// DocumentController streams generated spreadsheets and PDF archives
type DocumentController struct {
	exportService      ExportService
	chargeSheetService ChargeSheetService
	updateFormService  UpdateFormService
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(exportService ExportService, chargeSheetService ChargeSheetService, updateFormService UpdateFormService) *DocumentController {
	return &DocumentController{
		exportService:      exportService,
		chargeSheetService: chargeSheetService,
		updateFormService:  updateFormService,
	}
}

// ExportStages exports the trainings, optionally restricted to one period
// (?period=<id>, ?filter=<id> is accepted too)
func (c *DocumentController) ExportStages(ctx *gin.Context) {
	value := ctx.Query("period")
	if value == "" {
		value = ctx.Query("filter")
	}
	periodID, err := helpers.ParseOptionalID(value)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Période: "+err.Error()))
		return
	}

	file, err := c.exportService.Stages(ctx, periodID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendFile(ctx, file)
}

// ExportGeneral exports every active student
func (c *DocumentController) ExportGeneral(ctx *gin.Context) {
	file, err := c.exportService.General(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendFile(ctx, file)
}

// ExportOrtra exports the students of the ORTRA apprenticeship classes
func (c *DocumentController) ExportOrtra(ctx *gin.Context) {
	file, err := c.exportService.Ortra(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendFile(ctx, file)
}

// ExportImputations exports the workload and accounting columns of every teacher
func (c *DocumentController) ExportImputations(ctx *gin.Context) {
	file, err := c.exportService.Imputations(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendFile(ctx, file)
}

// ChargeSheets zips the charge sheets of the teachers listed in ?ids=1,2
func (c *DocumentController) ChargeSheets(ctx *gin.Context) {
	ids, err := parseIDList(ctx.Query("ids"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(err.Error()))
		return
	}
	if len(ids) == 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Aucun enseignant sélectionné"))
		return
	}

	file, err := c.chargeSheetService.Archive(ctx, ids)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendFile(ctx, file)
}

// UpdateForms zips the personal data update forms, to be returned by ?date=DD.MM.YYYY
func (c *DocumentController) UpdateForms(ctx *gin.Context) {
	returnDate, err := helpers.ParseSwissDate(ctx.Query("date"), nil)
	if err != nil || returnDate == nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("La date fournie n'est pas valable"))
		return
	}

	file, err := c.updateFormService.Archive(ctx, *returnDate)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendFile(ctx, file)
}
