package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshcrate/attendance/internal/app/service/attendance"
	"github.com/freshcrate/attendance/internal/app/service/extension"
	"github.com/freshcrate/attendance/internal/store"
	"github.com/freshcrate/attendance/pkg/response"
)

// writeError maps the engine's error taxonomy onto HTTP responses. A
// deadline overrun is reported as retryable; every mutation is idempotent
// per date, so a retried request cannot double-extend.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, extension.ErrPastDateExtension):
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, "cannot modify a past delivery day"))
	case errors.Is(err, attendance.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
	case errors.Is(err, extension.ErrCancelledDay):
		c.JSON(http.StatusConflict, response.ErrorMsg(response.APIResponseCodeConflict, err.Error()))
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, response.ErrorMsg(response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, response.ErrorMsg(response.APIResponseCodeTimeout, ""))
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorMsg(response.APIResponseCodeError, err.Error()))
	}
}
