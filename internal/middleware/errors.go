package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Fraol-12/WhisperBox/internal/apperr"
)

// RespondError writes err in the standard error envelope. Classified errors
// keep their code and message; causes and unclassified errors are logged
// and never shown to the client.
func RespondError(c fiber.Ctx, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		Logger.Error().Err(err).Str("path", sanitizePath(c.Path())).Msg("unhandled error")
		return ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Server error")
	}
	if ae.Kind == apperr.KindPersistence || ae.Kind == apperr.KindInternal {
		Logger.Error().Err(err).Str("code", ae.Code).Str("path", sanitizePath(c.Path())).Msg("request failed")
	}
	return ErrorResponse(c, ae.Kind.Status(), ae.Code, ae.Message)
}

// ErrorHandler is the Fiber application error handler. Framework errors
// such as unknown routes and oversized bodies keep their status; anything
// else goes through RespondError.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "INTERNAL_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusRequestEntityTooLarge:
			code = "PAYLOAD_TOO_LARGE"
		case fiber.StatusBadRequest:
			code = "INVALID_BODY"
		}
		return ErrorResponse(c, fe.Code, code, fe.Message)
	}
	return RespondError(c, err)
}
