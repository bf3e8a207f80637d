// Package ctxutil carries the HTTP request id from gin.Context into the
// plain context.Context that flows into application services, so a
// request's whole call chain can be correlated in logs.
package ctxutil

import (
	"context"

	"github.com/gmartincasals/clean-orders/api/response"

	"github.com/gin-gonic/gin"
)

type requestIDKey struct{}

// WithRequestID returns ctx's request context augmented with the request
// id RequestIDMiddleware stashed on the gin.Context.
func WithRequestID(ctx *gin.Context) context.Context {
	requestID := response.GetRequestID(ctx)
	return context.WithValue(ctx.Request.Context(), requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stashed by WithRequestID, or
// "" if none was set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
