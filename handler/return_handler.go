package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/tax-slip-engine/dto"
	"github.com/Aashish23092/tax-slip-engine/repository"
	"github.com/Aashish23092/tax-slip-engine/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReturnHandler struct {
	taxService *service.TaxService
	store      repository.DocumentStore
	logger     *zap.Logger
}

func NewReturnHandler(taxService *service.TaxService, store repository.DocumentStore, logger *zap.Logger) *ReturnHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnHandler{
		taxService: taxService,
		store:      store,
		logger:     logger,
	}
}

// Preview handles POST /taxpayers/:taxpayerId/years/:year/preview. The
// body carries the rest of the profile; stored documents are the input.
func (h *ReturnHandler) Preview(c *gin.Context) {
	taxpayerID, year, ok := parseTaxpayerYear(c, h.logger)
	if !ok {
		return
	}

	var profile dto.TaxpayerProfile
	if err := c.ShouldBindJSON(&profile); err != nil && !errors.Is(err, io.EOF) {
		sendError(c, h.logger, http.StatusBadRequest, "INVALID_REQUEST", "Invalid taxpayer profile", err)
		return
	}
	profile.TaxpayerID = taxpayerID
	profile.Year = year

	docs, err := h.store.List(c.Request.Context(), taxpayerID, year)
	if err != nil {
		sendServiceError(c, h.logger, "Failed to list documents", err)
		return
	}
	h.respond(c, docs, profile)
}

// PreviewStateless handles POST /returns/preview with documents and
// profile in the body.
func (h *ReturnHandler) PreviewStateless(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, h.logger, http.StatusBadRequest, "INVALID_REQUEST", "Invalid preview request", err)
		return
	}
	h.respond(c, req.Documents, req.Profile)
}

func (h *ReturnHandler) respond(c *gin.Context, docs []dto.ParsedDocument, profile dto.TaxpayerProfile) {
	preview, err := h.taxService.Calculate(docs, profile)
	if err != nil {
		sendServiceError(c, h.logger, "Failed to calculate return", err)
		return
	}

	if c.Query("format") != "xlsx" {
		c.JSON(http.StatusOK, preview)
		return
	}
	out, err := service.ExportPreviewXLSX(preview, docs)
	if err != nil {
		sendError(c, h.logger, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export return", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="return-%s-%d.xlsx"`, preview.TaxpayerID, preview.Year))
	c.Data(http.StatusOK, xlsxContentType, out)
}
