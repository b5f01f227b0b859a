package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"meetscribe-server/internal/domain"
	authvalidator "meetscribe-server/internal/infrastructure/auth"
	"meetscribe-server/internal/infrastructure/metrics"
	"meetscribe-server/internal/utils/platformerrors"
)

const principalContextKey = "principal"

// AuthMiddleware validates session JWT bearer tokens and stores the caller
// identity in the gin context. Every protected handler reads the principal
// from there and passes it down explicitly.
func AuthMiddleware(validator *authvalidator.SessionValidator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, found, err := principalFromJWT(c, validator)
		if err != nil && !errors.Is(err, http.ErrNoCookie) {
			logger.Warn().Err(err).Msg("jwt validation failed")
			metrics.RecordAuthRequest("jwt", "invalid")
			platformerrors.WriteUnauthorized(c, "unauthorized")
			c.Abort()
			return
		}
		if !found {
			logger.Warn().
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			metrics.RecordAuthRequest("jwt", "missing")
			platformerrors.WriteUnauthorized(c, "authentication required")
			c.Abort()
			return
		}

		metrics.RecordAuthRequest("jwt", "ok")
		setPrincipal(c, principal)
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

func setPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
	c.Set("user_id", principal.UserID)
	if principal.Email != "" {
		c.Set("user_email", principal.Email)
	}
	c.Writer.Header().Set("X-Auth-Method", string(principal.AuthMethod))
}

func principalFromJWT(c *gin.Context, validator *authvalidator.SessionValidator) (domain.Principal, bool, error) {
	if validator == nil {
		return domain.Principal{}, false, http.ErrNoCookie
	}

	token, ok := bearerToken(c)
	if !ok {
		return domain.Principal{}, false, http.ErrNoCookie
	}

	claims, err := validator.Validate(c.Request.Context(), token)
	if err != nil {
		return domain.Principal{}, false, err
	}

	return domain.Principal{
		UserID:     claims.Subject,
		AuthMethod: domain.AuthMethodJWT,
		Subject:    claims.Subject,
		Issuer:     claims.Issuer,
		Email:      claims.Email,
		Name:       claims.Name,
	}, true, nil
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
