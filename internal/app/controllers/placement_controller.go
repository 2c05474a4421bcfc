package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/app/models/dto"
	"github.com/cpne/stages/internal/app/services"
	"github.com/cpne/stages/internal/middleware"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/helpers"
)

// PlacementService is what the attribution screen needs from the placement engine
type PlacementService interface {
	ListSections(ctx context.Context) ([]*models.Section, error)
	ListReferents(ctx context.Context) ([]*models.Referent, error)
	ListPeriods(ctx context.Context, sectionID int64) ([]*models.Period, error)
	ListClasses(ctx context.Context, sectionID int64) ([]*models.Klass, error)
	ListEligibleStudents(ctx context.Context, periodID int64) ([]*models.EligibleStudent, error)
	ListAvailabilities(ctx context.Context, periodID int64) ([]*models.AvailabilityView, error)
	ListTrainings(ctx context.Context, periodID int64) ([]*models.TrainingView, error)
	ListContacts(ctx context.Context, corporationID int64) ([]*models.CorpContact, error)
	CreateTraining(ctx context.Context, in services.CreateTrainingInput) (*models.Training, error)
	DeleteTraining(ctx context.Context, id int64) (*int64, error)
}

// PlacementController serves the JSON endpoints of the attribution screen
type PlacementController struct {
	placementService PlacementService
}

// NewPlacementController creates a new PlacementController
func NewPlacementController(placementService PlacementService) *PlacementController {
	return &PlacementController{
		placementService: placementService,
	}
}

// Attribution returns the sections and referents the screen starts from
func (c *PlacementController) Attribution(ctx *gin.Context) {
	sections, err := c.placementService.ListSections(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	referents, err := c.placementService.ListReferents(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAttributionResponse(sections, referents))
}

// SectionPeriods lists the recent periods of a section
func (c *PlacementController) SectionPeriods(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	periods, err := c.placementService.ListPeriods(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPeriodResponses(periods))
}

// SectionClasses lists the classes of a section as [id, name] pairs
func (c *PlacementController) SectionClasses(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	klasses, err := c.placementService.ListClasses(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewClassPairs(klasses))
}

// PeriodStudents lists the students eligible for a period
func (c *PlacementController) PeriodStudents(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	students, err := c.placementService.ListEligibleStudents(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewEligibleStudentResponses(students))
}

// PeriodCorporations lists the availabilities of a period
func (c *PlacementController) PeriodCorporations(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	views, err := c.placementService.ListAvailabilities(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAvailabilityResponses(views))
}

// PeriodTrainings lists the trainings of a period
func (c *PlacementController) PeriodTrainings(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	views, err := c.placementService.ListTrainings(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewTrainingResponses(views))
}

// CorporationContacts lists the active contacts of a corporation
func (c *PlacementController) CorporationContacts(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	contacts, err := c.placementService.ListContacts(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewContactResponses(contacts))
}

// NewTraining binds a student to an availability. The body is the plain text "OK", or
// the reason of the refusal.
func (c *PlacementController) NewTraining(ctx *gin.Context) {
	var form dto.CreateTrainingForm
	if err := ctx.ShouldBind(&form); err != nil {
		ctx.String(http.StatusBadRequest, "Étudiant ou disponibilité manquant")
		return
	}

	in := services.CreateTrainingInput{StudentID: form.StudentID, AvailabilityID: form.AvailabilityID}
	var err error
	if in.ReferentID, err = helpers.ParseOptionalID(form.ReferentID); err != nil {
		ctx.String(http.StatusBadRequest, "Référent: "+err.Error())
		return
	}
	if in.ContactID, err = helpers.ParseOptionalID(form.ContactID); err != nil {
		ctx.String(http.StatusBadRequest, "Contact: "+err.Error())
		return
	}

	if _, err := c.placementService.CreateTraining(ctx, in); err != nil {
		status, _ := middleware.ErrorStatus(err)
		if status == http.StatusInternalServerError {
			_ = ctx.Error(err)
			ctx.String(status, "Erreur interne du serveur")
			return
		}
		ctx.String(status, apperrors.UserMessage(err))
		return
	}
	ctx.String(http.StatusOK, "OK")
}

// DeleteTraining removes a training and returns its referent id
func (c *PlacementController) DeleteTraining(ctx *gin.Context) {
	var form dto.DeleteTrainingForm
	if err := ctx.ShouldBind(&form); err != nil {
		middleware.AbortWithBindingError(ctx, "Formation manquante", err)
		return
	}
	refID, err := c.placementService.DeleteTraining(ctx, form.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.DeleteTrainingResponse{RefID: refID})
}
