package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{dto.ErrDocumentNotFound, http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
	{dto.ErrNoDocuments, http.StatusUnprocessableEntity, "NO_DOCUMENTS"},
	{dto.ErrUnknownProvince, http.StatusUnprocessableEntity, "UNKNOWN_PROVINCE"},
	{dto.ErrUnsupportedTaxYear, http.StatusUnprocessableEntity, "UNSUPPORTED_TAX_YEAR"},
	{dto.ErrNegativeAmount, http.StatusUnprocessableEntity, "NEGATIVE_AMOUNT"},
	{dto.ErrInvalidProfile, http.StatusUnprocessableEntity, "INVALID_PROFILE"},
	{dto.ErrDocumentDataMismatch, http.StatusUnprocessableEntity, "DOCUMENT_DATA_MISMATCH"},
	{dto.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{dto.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE"},
	{dto.ErrNoTextExtracted, http.StatusUnprocessableEntity, "NO_TEXT_EXTRACTED"},
}

// sendError sends a structured error response
func sendError(c *gin.Context, logger *zap.Logger, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		if statusCode >= http.StatusInternalServerError {
			logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
		} else {
			logger.Info(message, zap.String("path", c.FullPath()), zap.Error(err))
		}
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}

// sendServiceError maps the named errors of the service and store layers
// to a status; anything else is a 500.
func sendServiceError(c *gin.Context, logger *zap.Logger, message string, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			sendError(c, logger, e.status, e.code, message, err)
			return
		}
	}
	sendError(c, logger, http.StatusInternalServerError, "INTERNAL_ERROR", message, err)
}
