package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/captcha"
	"github.com/cineverse-captions/cineverse/internal/db/controller/exam"
	"github.com/cineverse-captions/cineverse/internal/db/controller/group"
	"github.com/cineverse-captions/cineverse/internal/db/controller/payment"
	"github.com/cineverse-captions/cineverse/internal/db/controller/post"
	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
	"github.com/cineverse-captions/cineverse/internal/db/controller/subscription"
)

// ErrInvalidBody is returned when a request body cannot be parsed.
var ErrInvalidBody = errors.New("invalid request body")

// GenericErrorMessage is shown for unexpected failures; details only go to the log.
const GenericErrorMessage = "internal server error"

var statusByError = []struct {
	err    error
	status int
}{
	{ErrInvalidBody, fiber.StatusBadRequest},
	{auth.ErrInvalidInput, fiber.StatusBadRequest},
	{auth.ErrInvalidRole, fiber.StatusBadRequest},
	{captcha.ErrMissingToken, fiber.StatusBadRequest},
	{captcha.ErrFailed, fiber.StatusBadRequest},
	{post.ErrInvalidPost, fiber.StatusBadRequest},
	{payment.ErrInvalidPayment, fiber.StatusBadRequest},
	{exam.ErrInvalidExam, fiber.StatusBadRequest},
	{exam.ErrInvalidAnswer, fiber.StatusBadRequest},
	{group.ErrInvalidGroup, fiber.StatusBadRequest},
	{subscription.ErrInvalidPlan, fiber.StatusBadRequest},
	{setting.ErrSettingKeyEmpty, fiber.StatusBadRequest},

	{auth.ErrEmailExists, fiber.StatusConflict},
	{payment.ErrPaymentUsed, fiber.StatusConflict},
	{exam.ErrAlreadySubmitted, fiber.StatusConflict},
	{group.ErrGroupNameTaken, fiber.StatusConflict},
	{group.ErrAlreadyMember, fiber.StatusConflict},
	{group.ErrOwnerCannotLeave, fiber.StatusConflict},
	{subscription.ErrPlanExists, fiber.StatusConflict},
	{subscription.ErrKeyUsed, fiber.StatusConflict},
	{setting.ErrSettingAlreadyExists, fiber.StatusConflict},

	{auth.ErrForbidden, fiber.StatusForbidden},
	{auth.ErrSelfDemotion, fiber.StatusForbidden},
	{post.ErrForbidden, fiber.StatusForbidden},
	{post.ErrGroupNotAllowed, fiber.StatusForbidden},
	{post.ErrNotGroupMember, fiber.StatusForbidden},
	{payment.ErrNotPostOwner, fiber.StatusForbidden},

	{auth.ErrUserNotFound, fiber.StatusNotFound},
	{post.ErrPostNotFound, fiber.StatusNotFound},
	{payment.ErrPostNotFound, fiber.StatusNotFound},
	{payment.ErrPaymentNotFound, fiber.StatusNotFound},
	{exam.ErrExamNotFound, fiber.StatusNotFound},
	{group.ErrGroupNotFound, fiber.StatusNotFound},
	{group.ErrNotMember, fiber.StatusNotFound},
	{subscription.ErrPlanNotFound, fiber.StatusNotFound},
	{subscription.ErrKeyNotFound, fiber.StatusNotFound},
	{subscription.ErrNoActiveSubscription, fiber.StatusNotFound},
	{setting.ErrSettingNotFound, fiber.StatusNotFound},
}

// StatusFor maps a domain error to an HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}

	return fiber.StatusInternalServerError
}

// MessageFor is the client-facing text of err. Unexpected errors get GenericErrorMessage.
func MessageFor(err error) string {
	if StatusFor(err) == fiber.StatusInternalServerError {
		return GenericErrorMessage
	}

	return err.Error()
}

// JSONError writes err as {"error": "..."} with the mapped status. Validation problems are logged
// at warn, conflicts at info and unexpected failures at error.
func JSONError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)

	switch {
	case status >= fiber.StatusInternalServerError:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	case status == fiber.StatusConflict:
		log.Info().Err(err).Str("path", c.Path()).Msg("request conflicts with current state")
	default:
		log.Warn().Err(err).Str("path", c.Path()).Int("status", status).Msg("request rejected")
	}

	return c.Status(status).JSON(fiber.Map{"error": MessageFor(err)})
}
