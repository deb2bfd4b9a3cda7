// Package handlers implements the HTTP endpoints of the generation API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an AppError code to its HTTP status and writes the
// structured body.  Server-side codes are masked with the default message so
// internals do not leak to callers.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	msg := err.Error()
	if errors.IsServerError(code) {
		msg = errors.DefaultMessageForCode(code)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    code.String(),
		Message: msg,
	})
}
