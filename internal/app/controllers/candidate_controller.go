package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cpne/stages/internal/app/models/dto"
	"github.com/cpne/stages/internal/app/services"
	"github.com/cpne/stages/internal/middleware"
)

// CandidateService mails candidates and diploma defence convocations
type CandidateService interface {
	SendConfirmation(ctx context.Context, candidateID int64, subject, body string) (time.Time, error)
	ConvocationDraft(ctx context.Context, studentID int64) (*services.Message, error)
	SendConvocation(ctx context.Context, studentID int64, subject, body string) (time.Time, error)
}

// CandidateController handles candidate operations
type CandidateController struct {
	candidateService CandidateService
}

// NewCandidateController creates a new CandidateController
func NewCandidateController(candidateService CandidateService) *CandidateController {
	return &CandidateController{
		candidateService: candidateService,
	}
}

// SendConfirmation mails the admission confirmation to a candidate
func (c *CandidateController) SendConfirmation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ConfirmationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, "Message de confirmation invalide", err)
		return
	}

	sentAt, err := c.candidateService.SendConfirmation(ctx, id, req.Subject, req.Body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ConfirmationResponse{SentAt: sentAt.Format(time.RFC3339)}))
}

// ConvocationDraft returns the prefilled convocation of a student to the diploma defence
func (c *CandidateController) ConvocationDraft(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	msg, err := c.candidateService.ConvocationDraft(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(msg))
}

// SendConvocation mails the reviewed convocation to the student and both experts
func (c *CandidateController) SendConvocation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ConfirmationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, "Message de convocation invalide", err)
		return
	}

	sentAt, err := c.candidateService.SendConvocation(ctx, id, req.Subject, req.Body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ConfirmationResponse{SentAt: sentAt.Format(time.RFC3339)}))
}
