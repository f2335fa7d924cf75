package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/overture-digital/marquee/internal/http/middleware"
	"github.com/overture-digital/marquee/internal/model"
)

type APIError struct {
	Code    int
	Message string
}

type HandlerFunc func(ctx *gin.Context) (any, *APIError)
type AuthHandlerFunc func(ctx *gin.Context, user *model.User) (any, *APIError)

// ResolveEndpoint adapts a typed handler to gin.
func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

// ResolveEndpointWithAuth adapts a typed handler that requires the
// authenticated user placed in context by the JWT middleware.
func ResolveEndpointWithAuth(h AuthHandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		result, apiErr := h(ctx, user)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}
