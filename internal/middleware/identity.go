package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// ErrNoIdentity is returned when a handler behind the authentication
// stage finds no claim in the context.  Reaching it means a route was
// registered without Authenticate.
var ErrNoIdentity = errors.New("no authenticated identity in context")

// ClaimFrom returns the claim attached by Authenticate.
func ClaimFrom(c echo.Context) (model.Claim, error) {
	claim, ok := c.Get(ClaimKey).(model.Claim)
	if !ok {
		return model.Claim{}, ErrNoIdentity
	}
	return claim, nil
}

// AccountIDFrom returns the authenticated account id.
func AccountIDFrom(c echo.Context) (uint64, error) {
	id, ok := c.Get(AccountIDKey).(uint64)
	if !ok || id == 0 {
		return 0, ErrNoIdentity
	}
	return id, nil
}
