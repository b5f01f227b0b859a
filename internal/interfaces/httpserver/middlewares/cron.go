package middlewares

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"meetscribe-server/internal/domain"
	"meetscribe-server/internal/infrastructure/metrics"
	"meetscribe-server/internal/utils/platformerrors"
)

// CronAuthMiddleware guards the internal cron trigger endpoints with a shared
// bearer secret. Callers authenticated this way act as a system principal,
// never as a user.
func CronAuthMiddleware(cronSecret string, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok || cronSecret == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(cronSecret)) != 1 {
			logger.Warn().
				Str("path", c.FullPath()).
				Msg("cron endpoint called without valid secret")
			metrics.RecordAuthRequest("cron_secret", "invalid")
			platformerrors.WriteUnauthorized(c, "unauthorized")
			c.Abort()
			return
		}

		metrics.RecordAuthRequest("cron_secret", "ok")
		setPrincipal(c, domain.Principal{
			UserID:     "system:cron",
			AuthMethod: domain.AuthMethodCronSecret,
			Subject:    "system:cron",
		})
		c.Next()
	}
}
