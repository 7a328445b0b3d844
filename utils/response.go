package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code   int    `json:"code"`
	Detail string `json:"detail"`
}

// Success writes payload as-is with 200 OK.
func Success(ctx *gin.Context, payload interface{}) {
	ctx.JSON(http.StatusOK, payload)
}

// Error writes a terse error body with the given status and application code.
func Error(ctx *gin.Context, status int, code int, detail string) {
	ctx.JSON(status, ErrorResponse{Code: code, Detail: detail})
}

// InternalError logs err with request context and answers with a generic 500.
// The underlying error is never exposed to the client.
func InternalError(ctx *gin.Context, code int, err error) {
	if Sugar != nil {
		Sugar.Errorw("request failed",
			"code", code,
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"request_id", ctx.GetString(ContextRequestIDKey),
			"error", err,
		)
	}
	Error(ctx, http.StatusInternalServerError, code, "internal server error")
}
