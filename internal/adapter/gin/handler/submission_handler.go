package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"user-form-service/internal/usecase/submission"
	"user-form-service/pkg/logger"
)

// SuccessMessage is the body returned for a stored submission.
const SuccessMessage = "Data Stored Successfully!"

// SubmissionHandler handles form submissions
type SubmissionHandler struct {
	uc  submission.Usecase
	log *zap.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler instance
func NewSubmissionHandler(uc submission.Usecase, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		uc:  uc,
		log: log,
	}
}

// SubmitForm represents the URL-encoded body of POST /submit
type SubmitForm struct {
	Name  string `form:"name"`
	Email string `form:"email"`
}

// Submit handles POST /submit
func (h *SubmissionHandler) Submit(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	// Body fields only; the query string is not consulted.
	var form SubmitForm
	if err := c.ShouldBindWith(&form, binding.FormPost); err != nil {
		log.Warn("invalid form body", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_form",
			Message: err.Error(),
		})
		return
	}

	log.Debug("form submission received", zap.Bool("has_name", form.Name != ""), zap.Bool("has_email", form.Email != ""))

	if _, err := h.uc.Submit(c.Request.Context(), submission.SubmitRequest{
		Name:  form.Name,
		Email: form.Email,
	}); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.String(http.StatusOK, SuccessMessage)
}
