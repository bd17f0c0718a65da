package auth

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"animeverse/internal/store"
	"animeverse/pkg/models"
)

const (
	// CtxUserKey holds the resolved *models.User for the request.
	CtxUserKey = "auth_user"
	// sessionUserKey is the session entry naming the logged-in user.
	sessionUserKey = "user_id"
	// TokenCookie carries the JWT for clients that prefer cookies over the
	// Authorization header.
	TokenCookie = "token"
)

// RequireUser authenticates the request, preferring the server-side session
// and falling back to a bearer token (Authorization header, then cookie).
// On the token path a present is_admin claim overrides the stored flag, so a
// token minted before a privilege change keeps its minted privileges until
// it expires. Malformed ids, unknown users, and bad signatures all collapse
// into the same 401; the response never explains which check failed.
func RequireUser(p *store.Provider, tokens TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := sessions.Default(c).Get(sessionUserKey).(string); ok {
			u, err := p.ResolveUser(c.Request.Context(), uid)
			if err == nil && u != nil {
				c.Set(CtxUserKey, u)
				c.Next()
				return
			}
		}

		if raw := bearerToken(c); raw != "" {
			if claims, err := tokens.Parse(raw); err == nil {
				u, err := p.ResolveUser(c.Request.Context(), claims.UserID)
				if err == nil && u != nil {
					if claims.IsAdmin != nil {
						u.IsAdmin = claims.Admin()
					}
					c.Set(CtxUserKey, u)
					c.Next()
					return
				}
			}
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		c.Abort()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser returns the user set by RequireUser, or nil when the request
// was not authenticated.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// RequireAdmin gates a route on the privilege flag; run it after
// RequireUser.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		if !u.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
