package middleware

import (
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Fraol-12/WhisperBox/internal/model"
)

// Request field limits.
const (
	MaxVoterIDLen = 128 // votes.voter_id VARCHAR(128)
	MaxSearchLen  = 200
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateComplaintID checks that id is a complaint UUID and returns its
// canonical form.
func ValidateComplaintID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "complaint id is required"
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", "complaint id is malformed"
	}
	return parsed.String(), ""
}

// ValidateVoterID checks a client-supplied voter token. The token is used
// verbatim, so only its length is bounded.
func ValidateVoterID(id string) (string, string) {
	if id == "" {
		return "", "voter id is required"
	}
	if len(id) > MaxVoterIDLen {
		return "", "X-User-ID must be at most 128 bytes"
	}
	return id, ""
}

// ValidateSearch trims a search term and bounds its length.
func ValidateSearch(q string) (string, string) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) > MaxSearchLen {
		return "", "search must be at most 200 characters"
	}
	return q, ""
}

// ValidateSortBy returns "date" when asked for it and "likes" otherwise.
func ValidateSortBy(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), model.SortByDate) {
		return model.SortByDate
	}
	return model.SortByLikes
}
