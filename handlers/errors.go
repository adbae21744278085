package handlers

import (
	"errors"
	"strings"

	"player-rewards-system/models"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors onto HTTP statuses so callers can decide
// whether to resubmit or abandon.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrSignatureExpired),
		errors.Is(err, models.ErrInvalidSigner),
		errors.Is(err, models.ErrInvalidSignature):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrNotEventManager),
		errors.Is(err, models.ErrNotSeller):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrNotRegistered),
		errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrAchievementNotFound),
		errors.Is(err, models.ErrListingNotFound),
		errors.Is(err, models.ErrItemNotEquipped):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrAlreadyRegistered),
		errors.Is(err, models.ErrAlreadyHasAchievement),
		errors.Is(err, models.ErrEventExists),
		errors.Is(err, models.ErrItemExists),
		errors.Is(err, models.ErrListingNotActive),
		errors.Is(err, models.ErrEventFull),
		errors.Is(err, models.ErrMaxSupplyReached),
		errors.Is(err, models.ErrTransferFailed):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrInsufficientPayment):
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusBadRequest
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func caller(c *fiber.Ctx) string {
	account, _ := c.Locals("account").(string)
	return account
}

// normalizeAccount lowercases a caller-supplied account string. Accounts are
// stored and compared lowercase; the gateway middleware already normalizes
// the caller, this covers subjects arriving in bodies and path params.
func normalizeAccount(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
