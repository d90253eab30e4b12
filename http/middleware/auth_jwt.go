package middleware

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/pkg/auth"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
	"github.com/benedict-erwin/lokiquery/pkg/response"
)

// JWTAuthMiddleware requires a bearer token of an active client holding
// requiredPermission. It is a no-op while auth is disabled.
func JWTAuthMiddleware(requiredPermission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.WithScope("JWTAuthMiddleware")

			if cfg := config.Get(); cfg == nil || !cfg.Auth.Enabled {
				return next(c)
			}

			path := c.Request().URL.Path
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn().Str("path", path).Msg("Missing Authorization header")
				return response.FailWithCode(c, constants.CodeMissingAuth)
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				log.Warn().Str("path", path).Msg("Invalid Authorization header format")
				return response.FailWithCode(c, constants.CodeInvalidToken)
			}

			claims, err := auth.VerifyJWT(tokenString)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("JWT verification failed")
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					return response.FailWithCode(c, constants.CodeExpiredToken)
				case errors.Is(err, auth.ErrUnknownClient):
					return response.FailWithCode(c, constants.CodeInvalidClientID)
				case errors.Is(err, auth.ErrInactiveClient):
					return response.FailWithCode(c, constants.CodeInactiveClient)
				}
				return response.FailWithCode(c, constants.CodeInvalidToken)
			}

			client, exists := auth.GetClientInfo(claims.ClientID)
			if !exists {
				return response.FailWithCode(c, constants.CodeInvalidClientID)
			}

			if requiredPermission != "" && !auth.HasPermission(client.Permissions, requiredPermission) {
				log.Warn().
					Str("client_id", claims.ClientID).
					Str("required_permission", requiredPermission).
					Strs("user_permissions", client.Permissions).
					Str("path", path).
					Msg("Insufficient permissions")
				return response.FailWithCode(c, constants.CodeInsufficientPerms)
			}

			c.Set(constants.ClientIDKey, claims.ClientID)
			log.Debug().
				Str("client_id", claims.ClientID).
				Str("client_name", client.ClientName).
				Str("path", path).
				Msg("Authentication successful")

			return next(c)
		}
	}
}
