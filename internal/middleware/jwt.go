// Package middleware provides the request-pipeline stages shared by all
// protected routes: bearer authentication and redis-backed rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lesson-scheduler/internal/utils"
)

// Context keys under which the authenticated identity is stored.
const (
	ClaimKey     = "claim"
	AccountIDKey = "account_id"
)

// Authenticate returns the authentication stage of the pipeline.  On each
// request it extracts the Authorization bearer token, verifies it, and
// attaches the resulting claim to the request context before the wrapped
// handler runs.  A missing or unverifiable token short-circuits with 401;
// the wrapped handler is never invoked.
//
// Revoked access tokens are not checked here; revocation exists only for
// refresh tokens.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claim, err := utils.VerifyAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ClaimKey, claim)
			c.Set(AccountIDKey, claim.AccountID)
			return next(c)
		}
	}
}
