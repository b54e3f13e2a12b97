package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/userhub/internal/actorctx"
	"github.com/geocoder89/userhub/internal/auth"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth trusts the identity embedded in the bearer token; it does not
// read the store.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid access token")
			return
		}

		id, err := m.jwt.Verify(raw)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
			return
		}

		// Stash identity on both the gin context and the request context
		c.Set(CtxUserID, id.UserID)
		c.Set(CtxRole, id.Role)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actorctx.Actor{
			UserID: id.UserID,
			Role:   id.Role,
		}))

		c.Next()
	}
}

// Optional helpers so handlers don’t need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// RoleFromContext returns the role embedded in the caller's token.
func RoleFromContext(c *gin.Context) (user.Role, bool) {
	v, ok := c.Get(CtxRole)
	if !ok {
		return "", false
	}
	role, ok := v.(user.Role)
	return role, ok
}

// error bodies match handlers.RespondError; duplicated here to avoid an import cycle
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"code":    code,
		"message": message,
	}

	if reqID := c.GetString(CtxRequestID); reqID != "" {
		body["requestId"] = reqID
	}

	c.AbortWithStatusJSON(status, body)
}
