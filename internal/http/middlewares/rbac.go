package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// RequireRole admits the request only if the caller's stored record holds
// the required role. The role in the token is ignored here, so a demotion
// takes effect on the next request.
func (m *AuthMiddleware) RequireRole(users UserLookup, required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)

		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		u, err := users.GetByID(ctx, userID)

		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				abortWithError(c, http.StatusForbidden, "forbidden", "Access denied. Admins only.")
				return
			}

			slog.Default().ErrorContext(c.Request.Context(), "role lookup failed", "err", err, "user_id", userID)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Server error")
			return
		}

		if u.Role != required {
			abortWithError(c, http.StatusForbidden, "forbidden", "Access denied. Admins only.")
			return
		}
		c.Next()
	}
}
