package handler

import (
	"github.com/gin-gonic/gin"
)

// PageHandler serves the static form page.
type PageHandler struct {
	indexPath string
}

// NewPageHandler creates a PageHandler serving the file at indexPath.
func NewPageHandler(indexPath string) *PageHandler {
	return &PageHandler{indexPath: indexPath}
}

// Index handles GET / by writing the file verbatim; the content type follows its extension.
func (h *PageHandler) Index(c *gin.Context) {
	c.File(h.indexPath)
}
