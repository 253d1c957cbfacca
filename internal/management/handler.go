package management

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rng/internal/constants"
	"rng/internal/logger"
	"rng/pkg/errors"
)

// BaseHandler carries the error rendering shared by management handlers.
type BaseHandler struct {
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.WarnwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}

// BindJSON decodes the request body into req and answers 400 on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err).WithMessage(err.Error())))
		return false
	}
	return true
}

// Limit parses the limit query parameter within [1, MaxLimit].
func Limit(c *gin.Context) int {
	limit := constants.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > constants.MaxLimit {
		limit = constants.MaxLimit
	}
	return limit
}
