// Package identity resolves the authenticated user for a request. The echo-jwt
// middleware verifies the token signature; the middleware here then rejects
// revoked tokens and loads the user row once, binding it to the request
// context. Handlers pass the resolved user explicitly into every service call
// instead of relying on ambient session state.
package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"taskhub/internal/auth"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

const userContextKey = "identity.user"

// Middleware loads the user referenced by the verified access token. A token
// whose user no longer exists is treated as an authentication failure, not a
// not-found, so the response never reveals account lifecycle details.
func Middleware(users repository.UserRepository, tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := TokenClaims(c)
			if err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			if claims.ID != "" {
				revoked, _ := tokens.IsAccessTokenRevoked(c.Request().Context(), claims.ID)
				if revoked {
					httpErr := apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated)
					return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
				}
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				// Only a genuinely missing user is an authentication failure.
				// Store errors stay internal so callers see 500, not 401.
				if errors.Is(err, gorm.ErrRecordNotFound) {
					err = apperrors.ErrUserNotFound
				}
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user bound to the request by Middleware.
func CurrentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

// TokenClaims returns the verified JWT claims set by the echo-jwt middleware.
func TokenClaims(c echo.Context) (*auth.Claims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return claims, nil
}
