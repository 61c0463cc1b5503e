package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Fraol-12/WhisperBox/internal/apperr"
	"github.com/Fraol-12/WhisperBox/internal/model"
)

// Authorizer verifies an admin bearer token.
type Authorizer interface {
	Authorize(token string) (*model.Principal, error)
}

type principalKey struct{}

// RequireAdmin rejects requests without a valid admin token and stores the
// verified principal for the handlers behind it.
func RequireAdmin(a Authorizer) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			token = ""
		}
		p, err := a.Authorize(token)
		if err != nil {
			return RespondError(c, err)
		}
		c.Locals(principalKey{}, p)
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by RequireAdmin.
func PrincipalFrom(c fiber.Ctx) (model.Principal, bool) {
	p, ok := c.Locals(principalKey{}).(*model.Principal)
	if !ok || p == nil {
		return model.Principal{}, false
	}
	return *p, true
}

// MustPrincipal is PrincipalFrom for handlers mounted behind RequireAdmin.
func MustPrincipal(c fiber.Ctx) (model.Principal, error) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return model.Principal{}, apperr.ErrMissingToken
	}
	return p, nil
}
