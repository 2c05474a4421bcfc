package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cpne/stages/internal/app/models/dto"
	"github.com/cpne/stages/internal/app/services"
	"github.com/cpne/stages/internal/middleware"
)

// WorkloadService computes teacher activities
type WorkloadService interface {
	TeacherActivity(ctx context.Context, teacherID int64) (*services.TeacherWorkload, error)
	Limits() services.WorkloadLimits
}

// WorkloadController exposes the yearly activity of teachers
type WorkloadController struct {
	workloadService WorkloadService
}

// NewWorkloadController creates a new WorkloadController
func NewWorkloadController(workloadService WorkloadService) *WorkloadController {
	return &WorkloadController{
		workloadService: workloadService,
	}
}

// TeacherActivity computes the activity of a teacher. Computing it records the periods
// carried over to next year.
func (c *WorkloadController) TeacherActivity(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	w, err := c.workloadService.TeacherActivity(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(mapWorkload(w, c.workloadService.Limits())))
}

func mapWorkload(w *services.TeacherWorkload, limits services.WorkloadLimits) dto.TeacherActivityResponse {
	a := w.Activity
	response := dto.TeacherActivityResponse{
		TeacherID:        w.Teacher.ID,
		Teacher:          w.Teacher.Label(),
		Rate:             w.Teacher.Rate,
		TotHyperPlanning: a.TotHyperPlanning(),
		PercentPaid:      limits.Percent(a.TotPaid),
		Activity: dto.ActivityTotals{
			Mandates:       a.Mandates,
			PreviousReport: a.PreviousReport,
			TotMandates:    a.TotMandates,
			TotTeaching:    a.TotTeaching,
			TotFormation:   a.TotFormation,
			TotWork:        a.TotWork,
			TotPaid:        a.TotPaid,
			Report:         a.Report,
		},
		Imputations:    make([]dto.ImputationEntry, 0, len(services.ImputationKeys)),
		TotImputations: w.Imputations.Total(),
	}
	for _, key := range services.ImputationKeys {
		response.Imputations = append(response.Imputations, dto.ImputationEntry{Key: key, Periods: w.Imputations[key]})
	}
	return response
}
