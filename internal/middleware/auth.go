package middleware

import (
	"net/http"
	"strings"

	"vendorledger/internal/auth"
	"vendorledger/internal/service"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	actorKey        = "actor"
	accessCookie    = "access_token"
	bearerPrefix    = "Bearer"
	cookieMaxAgeSec = 3600 * 24
)

// TokenParser verifies access tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// SetTokenCookie stores the access token as an HttpOnly cookie.
// Secure cookies use SameSite=None so cross-origin frontends still send them.
func SetTokenCookie(c *gin.Context, token string, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(accessCookie, token, cookieMaxAgeSec, "/", "", secure, true)
}

// RequireRole validates the access token and checks the caller's role against allowedRoles.
// On success the caller is available through ActorFrom.
func RequireRole(tokens TokenParser, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid or expired token"))
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		roleAllowed := false
		for _, role := range allowedRoles {
			if claims.Role == role {
				roleAllowed = true
				break
			}
		}
		if !roleAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(actorKey, service.Actor{ID: userID, Role: claims.Role, VendorID: claims.VendorID})
		c.Next()
	}
}

// ActorFrom returns the caller set by RequireRole.
func ActorFrom(c *gin.Context) (service.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return service.Actor{}, false
	}
	actor, ok := v.(service.Actor)
	return actor, ok
}

// extractToken tries the cookie first, then the Authorization header.
func extractToken(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(accessCookie); err == nil && token != "" {
		return token, true
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || parts[0] != bearerPrefix {
		return "", false
	}
	return parts[1], true
}
