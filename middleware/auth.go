package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/minipost/repository"
	"github.com/cppla/minipost/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextEmailKey stores the authenticated user's email inside Gin context.
	ContextEmailKey = "email"
)

// AuthRequired ensures the request carries a valid bearer token whose user
// still exists. Invalid and expired tokens get the same answer.
func AuthRequired(tokens *utils.TokenManager, users repository.UserStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid or expired token")
			ctx.Abort()
			return
		}

		user, err := users.FindByID(ctx.Request.Context(), claims.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			utils.Sugar.Warnw("token for unknown user", "user_id", claims.UserID,
				"request_id", ctx.GetString(utils.ContextRequestIDKey))
			utils.Error(ctx, http.StatusUnauthorized, 40106, "account not found")
			ctx.Abort()
			return
		}
		if err != nil {
			utils.InternalError(ctx, 50101, err)
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextEmailKey, user.Email)
		ctx.Next()
	}
}

// UserID returns the id stored by AuthRequired.
func UserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
