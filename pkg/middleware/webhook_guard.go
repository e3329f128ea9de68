package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"kiranaledger/pkg/utils"

	"github.com/gin-gonic/gin"
)

// WebhookGuardMiddleware protects inbound collaborator webhooks with a shared
// token instead of JWT; the messaging provider sends it in X-Webhook-Token.
func WebhookGuardMiddleware() gin.HandlerFunc {
	expected := os.Getenv("WEBHOOK_TOKEN")

	return func(c *gin.Context) {
		if expected == "" {
			// No token configured; accept but the provider config should set one.
			c.Next()
			return
		}

		got := c.GetHeader("X-Webhook-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid webhook token")
			c.Abort()
			return
		}

		c.Next()
	}
}
