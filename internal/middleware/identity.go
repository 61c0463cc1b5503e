package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Fraol-12/WhisperBox/pkg/hash"
)

// VoterHeader carries an optional client-chosen voter token.
const VoterHeader = "X-User-ID"

// ResolveVoter returns the identity a like is recorded under: the
// X-User-ID header when present, otherwise a fingerprint of the client IP
// and User-Agent. A non-empty message means the header was unusable.
func ResolveVoter(c fiber.Ctx) (string, string) {
	if raw := c.Get(VoterHeader); raw != "" {
		return ValidateVoterID(raw)
	}
	return hash.VoterIdentity(c.IP(), c.Get(fiber.HeaderUserAgent)), ""
}
