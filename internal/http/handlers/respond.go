package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every failed request. Message is human readable;
// Code is stable for clients to branch on.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(middlewares.CtxRequestID); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, APIError{
		Code:      code,
		Message:   message,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondInternal logs err and answers with a generic message only.
func RespondInternal(ctx *gin.Context, message string, err error) {
	slog.Default().ErrorContext(ctx.Request.Context(), message,
		"err", err,
		"route", ctx.FullPath(),
		"request_id", requestIDFrom(ctx),
	)

	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}
