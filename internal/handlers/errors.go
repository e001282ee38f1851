package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Machine-readable codes for failures a caller is expected to act on.
const (
	codeUnresolvedAccount = "UNRESOLVED_ACCOUNT"
	codeInsufficientStock = "INSUFFICIENT_STOCK"
	codeStorageFailure    = "STORAGE_FAILURE"
)

// respondWithError maps service errors onto HTTP responses.
// action is used in log lines and in the generic 500 message.
func respondWithError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromContext(c)

	var unresolved *apperrors.UnresolvedAccountError
	var stockErr *apperrors.InsufficientStockError

	switch {
	case errors.As(err, &unresolved):
		logger.Warn("Account could not be resolved", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    err.Error(),
			"code":     codeUnresolvedAccount,
			"category": unresolved.Category,
			"type":     unresolved.Type,
			"usage":    unresolved.Usage,
		})
	case errors.Is(err, apperrors.ErrUnresolvedAccount):
		logger.Warn("Account could not be resolved", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": codeUnresolvedAccount})
	case errors.As(err, &stockErr):
		logger.Warn("Insufficient stock", slog.String("action", action), slog.String("item_id", stockErr.ItemID))
		c.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"code":      codeInsufficientStock,
			"itemId":    stockErr.ItemID,
			"requested": stockErr.Requested,
			"onHand":    stockErr.OnHand,
		})
	case errors.Is(err, apperrors.ErrInsufficientStock):
		logger.Warn("Insufficient stock", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": codeInsufficientStock})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.IsRetryable(err):
		logger.Error("Storage failure", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Storage temporarily unavailable, retry with the same idempotency key",
			"code":      codeStorageFailure,
			"retryable": true,
			"requestId": middleware.GetRequestIDFromCtx(c.Request.Context()),
		})
	case errors.Is(err, apperrors.ErrUnbalancedEntry):
		// composer bug, never the caller's fault
		logger.Error("Unbalanced journal entry", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action, "requestId": middleware.GetRequestIDFromCtx(c.Request.Context())})
	default:
		logger.Error("Unexpected error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action, "requestId": middleware.GetRequestIDFromCtx(c.Request.Context())})
	}
}

// bindError answers a request whose body or query could not be bound.
func bindError(c *gin.Context, err error, what string) {
	middleware.GetLoggerFromContext(c).Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + ": " + err.Error()})
}

// currentUserID returns the authenticated operator id, answering 401 when it is missing.
func currentUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
