package middleware

import (
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/observability/metrics"
	"github.com/gin-gonic/gin"
)

// pathsToSkip are not worth a series of their own.
var pathsToSkip = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestMetrics records every API request against its route template.
func RequestMetrics(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
