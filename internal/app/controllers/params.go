package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cpne/stages/internal/app/models/dto"
	"github.com/cpne/stages/internal/app/services"
)

// parseIDParam reads a positive integer path parameter. It answers 400 and returns false
// when the parameter is not one.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Identifiant invalide").
			WithField(name).
			WithSeverity(dto.ErrorSeverityWarning).
			WithDetails(fmt.Sprintf("%q n'est pas un identifiant", ctx.Param(name)))
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// parseIDList splits "1,2,3" into ids, skipping blanks
func parseIDList(value string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("identifiant %q invalide", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// sendFile streams a generated document as an attachment
func sendFile(ctx *gin.Context, file *services.File) {
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	ctx.Data(http.StatusOK, file.ContentType, file.Data)
}
