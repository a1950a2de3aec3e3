package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/johnlaff/ArchTime/security"
	"github.com/johnlaff/ArchTime/web/common"
)

// SessionCookie carries the identity token for browser-style callers; API
// callers send it as a Bearer header instead.
const SessionCookie = "archtime.SessionCookie"

const identityKey = "identity"

// Authentication validates the identity token (cookie or Bearer) and
// enforces the allow-list: a valid token whose email is not allowed is
// still a 401.
func Authentication(base64Secret string, allowedEmails []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("Unauthorized"))
				return
			}
			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("Unauthorized"))
				return
			}
			tokenStr = parts[1]
		}

		claims, err := security.ParseIdentityToken(tokenStr, base64Secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		if !isAllowedEmail(claims.Email, allowedEmails) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("Unauthorized"))
			return
		}

		c.Set(identityKey, claims)
		c.Next()
	}
}

// Identity returns the authenticated claims set by Authentication.
func Identity(c *gin.Context) *security.IdentityClaims {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*security.IdentityClaims)
	return claims
}

// UserAgent returns the caller's user agent for audit records, nil when
// absent.
func UserAgent(c *gin.Context) *string {
	ua := c.GetHeader("User-Agent")
	if ua == "" {
		return nil
	}
	return &ua
}

func isAllowedEmail(email string, allowed []string) bool {
	if email == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(a), email) {
			return true
		}
	}
	return false
}
