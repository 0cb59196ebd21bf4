package http

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"isec-extract/internal/domain"
	"isec-extract/internal/service"
)

// Extractor define lo que el handler necesita del servicio de extraccion.
type Extractor interface {
	ExtractFromPDF(ctx context.Context, pdfPath, model string) domain.ExtractionResult
}

// ExtractHandler mantiene dependencias para los endpoints de extraccion.
type ExtractHandler struct {
	logger          *zap.Logger
	extractor       Extractor
	limiter         service.ExtractionRateLimiter
	maxUploadSizeMB int
}

// NewExtractHandler crea una instancia de ExtractHandler con las dependencias
// necesarias. limiter puede ser nil: sin Redis no hay limite.
func NewExtractHandler(logger *zap.Logger, extractor Extractor, limiter service.ExtractionRateLimiter, maxUploadSizeMB int) *ExtractHandler {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = 100
	}
	return &ExtractHandler{
		logger:          logger,
		extractor:       extractor,
		limiter:         limiter,
		maxUploadSizeMB: maxUploadSizeMB,
	}
}

// Extract maneja POST /extract: recibe el PDF por multipart, lo guarda en un
// temporal y corre la extraccion. El resultado completo (errores, warnings y
// metadata incluidos) va siempre en el body; 422 marca extraccion fallida.
func (h *ExtractHandler) Extract(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many extraction requests, try again later"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.maxUploadSizeMB)<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "uploaded file too large"})
			return
		}
		h.logger.Warn("invalid extract request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are supported"})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+".pdf")
	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		h.logger.Error("save upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store uploaded file"})
		return
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			h.logger.Warn("temp file cleanup failed", zap.Error(err), zap.String("path", tmpPath))
		}
	}()

	model := strings.TrimSpace(c.PostForm("model"))

	h.logger.Info("extraction started",
		zap.String("filename", fileHeader.Filename),
		zap.Int64("size_bytes", fileHeader.Size),
		zap.String("model", model),
	)

	result := h.extractor.ExtractFromPDF(c.Request.Context(), tmpPath, model)
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
