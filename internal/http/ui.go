package http

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// Index sirve la pagina de subida de notas de contrato.
func (h *ExtractHandler) Index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := indexTemplate.Execute(c.Writer, gin.H{
		"MaxUploadSizeMB": h.maxUploadSizeMB,
	}); err != nil {
		h.logger.Error("render index failed", zap.Error(err))
	}
}
