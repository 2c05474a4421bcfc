package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cpne/stages/internal/app/models/dto"
	"github.com/cpne/stages/internal/pkg/apperrors"
)

// --- Central Error Handling Middleware/Function ---

// ErrorStatus maps an application error onto its HTTP status and error code. A code
// carried by a CustomError wins over the one derived from its sentinel.
func ErrorStatus(err error) (int, dto.ErrorCode) {
	status, code := sentinelStatus(err)
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Code != "" {
		code = dto.ErrorCode(ce.Code)
	}
	return status, code
}

func sentinelStatus(err error) (int, dto.ErrorCode) {
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeConflict
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeBadRequest
	case errors.Is(err, apperrors.ErrImportFailed):
		return http.StatusBadRequest, dto.ErrorCodeImportFailed
	case errors.Is(err, apperrors.ErrTransport):
		return http.StatusBadGateway, dto.ErrorCodeExternalServiceError
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer
	}
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, code := ErrorStatus(err)

	message := apperrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		message = "Erreur interne du serveur"
	}

	detail := dto.NewErrorDetail(code, message)
	if status < http.StatusInternalServerError {
		detail = detail.WithSeverity(dto.ErrorSeverityWarning)
	}
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && len(ce.Details) > 0 {
		detail = detail.WithDetails(ce.Details)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// AbortWithBindingError answers 400 for a request whose body or form did not bind
func AbortWithBindingError(c *gin.Context, message string, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewBindingErrorDetail(message, err)))
}
