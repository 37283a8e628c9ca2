package middleware

import (
	"net/http"
	"strings"

	"portfolio-dashboard/identity"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	TokenCookie = "portfolio_token"
	UserIDKey   = "user_id"

	cookieMaxAge = 365 * 24 * 60 * 60
)

// UserToken resolves the caller's user id from the token cookie or a Bearer
// header. Callers without a valid token get a fresh identity and cookie.
func UserToken(issuer *identity.Issuer, registry identity.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token, _ = c.Cookie(TokenCookie)
		}

		userID, err := issuer.Parse(token)
		if err != nil {
			if token != "" {
				log.WithField("error", err).Debugln("replacing invalid user token")
			}
			userID, token, err = issuer.Issue()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue user token"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(TokenCookie, token, cookieMaxAge, "/", "", false, true)
			c.Header("X-User-Token", token)
		}

		if err := registry.Touch(c.Request.Context(), userID); err != nil {
			log.WithFields(log.Fields{"user_id": userID, "error": err}).Warnln("identity registry unavailable")
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the id set by UserToken.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
