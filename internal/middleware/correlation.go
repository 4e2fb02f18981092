// Package middleware provides the gin middleware shared by the ledger and
// payment HTTP services.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader is the HTTP header for correlation ID
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is the key used to store correlation ID in the context
	CorrelationIDKey = "correlation_id"
)

// CorrelationID middleware ensures each request has a unique identifier for
// tracing. The payment service forwards it on ledger calls so one transfer
// can be followed across both services.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)
		c.Request = c.Request.WithContext(WithCorrelationContext(c.Request.Context(), correlationID))

		c.Next()
	}
}

type correlationContextKey struct{}

// WithCorrelationContext stores the correlation ID in a plain context so it
// survives past the gin layer, e.g. into outbound HTTP clients.
func WithCorrelationContext(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationContextKey{}, correlationID)
}

// CorrelationFromContext retrieves the correlation ID stored by
// WithCorrelationContext, or an empty string.
func CorrelationFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationContextKey{}).(string); ok {
		return id
	}
	return ""
}

// GetCorrelationID retrieves the correlation ID from the gin context if present
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(CorrelationIDKey); exists {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return ""
}
