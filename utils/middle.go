package utils

import (
	"AssetVault/internal/apperr"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthMiddleware verifies the bearer token and stores the caller's identity.
func AuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			Fail(c, apperr.New(apperr.Unauthenticated, "missing authorization header"))
			c.Abort()
			return
		}
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			if strings.EqualFold(authHeader, "Bearer") {
				Fail(c, apperr.New(apperr.Unauthenticated, "missing bearer token"))
			} else {
				Fail(c, apperr.New(apperr.InvalidCredential, "authorization header must be Bearer <token>"))
			}
			c.Abort()
			return
		}
		identity, err := tokens.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			Fail(c, err)
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Set("user_id", identity.UserID)
		c.Next()
	}
}

// CurrentIdentity returns the identity set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

// Authorize permits identity when its role is in allowed.
func Authorize(identity Identity, allowed ...string) error {
	if identity.Role == "" {
		return apperr.New(apperr.NoRole, "token carries no role")
	}
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return apperr.New(apperr.Forbidden, "insufficient role")
}

// RequireRoles rejects callers whose role is not in allowed. It must run after AuthMiddleware.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			Fail(c, apperr.New(apperr.Unauthenticated, "unauthenticated"))
			c.Abort()
			return
		}
		if err := Authorize(identity, allowed...); err != nil {
			Fail(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
