package middleware

import "github.com/gin-gonic/gin"

// contextKey is used for values stored in gin and request contexts.
type contextKey string

const (
	loggerKey    = contextKey("logger")    // gin context, request-scoped *slog.Logger
	loggerCtxKey = contextKey("ctxLogger") // request context, same logger
	requestIDKey = contextKey("requestID")
	userIDKey    = contextKey("userID") // operator id from the bearer token subject
)

// GetUserIDFromContext retrieves the authenticated operator id from the Gin context,
// falling back to the request context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		userID, ok := v.(string)
		return userID, ok && userID != ""
	}
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	return userID, ok && userID != ""
}
