package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/cpne/stages/internal/app/models/dto"
	"github.com/cpne/stages/internal/app/services"
	"github.com/cpne/stages/internal/middleware"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/filestorage"
)

// ImportService runs a file import inside one transaction
type ImportService interface {
	Import(ctx context.Context, kind services.ImportKind, filename string, r io.Reader) (*services.ImportResult, error)
}

// ImportController receives the uploaded CSV/XLSX files
type ImportController struct {
	importService ImportService
	fileStorage   filestorage.FileStorage
}

// NewImportController creates a new ImportController
func NewImportController(importService ImportService, fileStorage filestorage.FileStorage) *ImportController {
	return &ImportController{
		importService: importService,
		fileStorage:   fileStorage,
	}
}

// Import returns the handler importing the "upload" file as kind
func (c *ImportController) Import(kind services.ImportKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fileHeader, err := ctx.FormFile("upload")
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Aucun fichier reçu").
				WithField("upload").
				WithSeverity(dto.ErrorSeverityWarning).
				WithDetails(err.Error())
			ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}

		workDir, err := c.fileStorage.NewWorkDir()
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		defer workDir.Cleanup()

		upload, err := workDir.SaveUpload(fileHeader)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		file, err := os.Open(upload.Path)
		if err != nil {
			middleware.HandleAPIError(ctx, fmt.Errorf("reopening upload: %w", err))
			return
		}
		defer file.Close()

		result, err := c.importService.Import(ctx, kind, upload.Filename, file)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrImportFailed) && fileHeader.Header.Get("Content-Type") != "" {
				err = apperrors.NewImportError(fmt.Sprintf("%s (content-type: %s)",
					apperrors.UserMessage(err), fileHeader.Header.Get("Content-Type")))
			}
			middleware.HandleAPIError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
	}
}
