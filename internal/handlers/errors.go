package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/middleware"
	"github.com/gin-gonic/gin"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string         `json:"error"`
	Kind  apperrors.Kind `json:"kind,omitempty"`
}

// respondWithError maps err onto a status code and writes it. Server-side
// failures are logged at error level and hide the underlying message.
func respondWithError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.HTTPStatus(err)
	kind := apperrors.KindOf(err)
	if status >= http.StatusInternalServerError && kind == apperrors.KindInternal {
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(status, errorResponse{Error: msg, Kind: kind})
		return
	}
	logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, errorResponse{Error: err.Error(), Kind: kind})
}

// requireUserID reads the authenticated user id, aborting with 401 when absent.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}

// bindJSON decodes the request body, writing a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind JSON", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request format: " + err.Error(), Kind: apperrors.KindValidation})
		return false
	}
	return true
}
