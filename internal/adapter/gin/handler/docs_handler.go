package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// SpecFileName is the path, under the docs route, of the OpenAPI document.
const SpecFileName = "/form.swagger.json"

// DocsHandler serves the OpenAPI document and Swagger UI under one catch-all route.
type DocsHandler struct {
	specPath string
	ui       http.Handler
}

// NewDocsHandler creates a DocsHandler for routes mounted at prefix (e.g. "/swagger").
func NewDocsHandler(prefix, specPath string) *DocsHandler {
	return &DocsHandler{
		specPath: specPath,
		ui:       httpSwagger.Handler(httpSwagger.URL(prefix + SpecFileName)),
	}
}

// Serve handles GET {prefix}/*any
func (h *DocsHandler) Serve(c *gin.Context) {
	if c.Param("any") == SpecFileName {
		c.File(h.specPath)
		return
	}
	h.ui.ServeHTTP(c.Writer, c.Request)
}
