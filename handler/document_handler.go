package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/tax-slip-engine/dto"
	"github.com/Aashish23092/tax-slip-engine/repository"
	"github.com/Aashish23092/tax-slip-engine/service"
)

type DocumentHandler struct {
	extraction  *service.ExtractionService
	store       repository.DocumentStore
	maxFileSize int64
	logger      *zap.Logger
}

func NewDocumentHandler(extraction *service.ExtractionService, store repository.DocumentStore, maxFileSize int64, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{
		extraction:  extraction,
		store:       store,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Interpret handles POST /documents/interpret: already acquired text in,
// parsed document out. Nothing is stored.
func (h *DocumentHandler) Interpret(c *gin.Context) {
	var req dto.InterpretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, h.logger, http.StatusBadRequest, "INVALID_REQUEST", "Invalid interpret request", err)
		return
	}

	doc := h.extraction.Interpret(req.FileName, req.Text)
	c.JSON(http.StatusOK, dto.NewDocumentView(doc, c.GetHeader("Accept-Language")))
}

// Upload handles POST /taxpayers/:taxpayerId/years/:year/documents.
// Files that cannot be read are reported next to the parsed documents.
func (h *DocumentHandler) Upload(c *gin.Context) {
	taxpayerID, year, ok := h.taxpayerYear(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		sendError(c, h.logger, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse multipart form", err)
		return
	}
	headers := form.File["files[]"]
	if len(headers) == 0 {
		headers = form.File["files"]
	}
	if len(headers) == 0 {
		sendError(c, h.logger, http.StatusBadRequest, "INVALID_REQUEST", "No files provided", nil)
		return
	}

	files, failures := h.readFiles(headers)
	result := h.extraction.ExtractBatch(c.Request.Context(), files)

	failures = append(failures, result.Failures...)
	views := make([]dto.DocumentView, 0, len(result.Documents))
	for _, doc := range result.Documents {
		if err := h.store.Save(c.Request.Context(), taxpayerID, year, doc); err != nil {
			h.logger.Error("failed to store document",
				zap.String("id", doc.ID),
				zap.String("file", doc.FileName),
				zap.Error(err),
			)
			failures = append(failures, dto.FileFailure{
				FileName: doc.FileName,
				Error:    fmt.Sprintf("store document: %v", err),
			})
			continue
		}
		views = append(views, dto.NewDocumentView(doc, c.GetHeader("Accept-Language")))
	}

	h.logger.Info("documents uploaded",
		zap.String("taxpayer_id", taxpayerID),
		zap.Int("year", year),
		zap.Int("documents", len(views)),
		zap.Int("failures", len(failures)),
	)
	c.JSON(http.StatusOK, dto.DocumentListResponse{
		Documents: views,
		Failures:  failures,
	})
}

func (h *DocumentHandler) readFiles(headers []*multipart.FileHeader) ([]dto.UploadedFile, []dto.FileFailure) {
	files := make([]dto.UploadedFile, 0, len(headers))
	var failures []dto.FileFailure
	for _, fh := range headers {
		if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
			failures = append(failures, dto.FileFailure{
				FileName: fh.Filename,
				Error:    fmt.Sprintf("%v: %d bytes", dto.ErrFileTooLarge, fh.Size),
			})
			continue
		}
		file, err := dto.NewUploadedFile(fh)
		if err != nil {
			failures = append(failures, dto.FileFailure{FileName: fh.Filename, Error: err.Error()})
			continue
		}
		files = append(files, file)
	}
	return files, failures
}

// List handles GET /taxpayers/:taxpayerId/years/:year/documents.
func (h *DocumentHandler) List(c *gin.Context) {
	taxpayerID, year, ok := h.taxpayerYear(c)
	if !ok {
		return
	}

	docs, err := h.store.List(c.Request.Context(), taxpayerID, year)
	if err != nil {
		sendServiceError(c, h.logger, "Failed to list documents", err)
		return
	}

	views := make([]dto.DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, dto.NewDocumentView(doc, c.GetHeader("Accept-Language")))
	}
	c.JSON(http.StatusOK, dto.DocumentListResponse{Documents: views})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendServiceError(c, h.logger, "Failed to load document", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDocumentView(doc, c.GetHeader("Accept-Language")))
}

// Update handles PATCH /documents/:id: admin notes and staff corrections,
// including a corrected document type.
func (h *DocumentHandler) Update(c *gin.Context) {
	var update dto.ReviewUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		sendError(c, h.logger, http.StatusBadRequest, "INVALID_REQUEST", "Invalid review update", err)
		return
	}

	doc, err := h.store.Update(c.Request.Context(), c.Param("id"), service.ApplyReview(update))
	if err != nil {
		sendServiceError(c, h.logger, "Failed to update document", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDocumentView(doc, c.GetHeader("Accept-Language")))
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		sendServiceError(c, h.logger, "Failed to delete document", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) taxpayerYear(c *gin.Context) (string, int, bool) {
	return parseTaxpayerYear(c, h.logger)
}

func parseTaxpayerYear(c *gin.Context, logger *zap.Logger) (string, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year <= 0 {
		sendError(c, logger, http.StatusBadRequest, "INVALID_REQUEST", "Invalid tax year", fmt.Errorf("year %q", c.Param("year")))
		return "", 0, false
	}
	return c.Param("taxpayerId"), year, true
}
