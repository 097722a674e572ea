package response

import (
	"errors"

	"wager-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var statusByError = []struct {
	err  error
	code int
}{
	{domain.ErrInvalidGame, fiber.StatusNotFound},
	{domain.ErrBetNotFound, fiber.StatusNotFound},
	{domain.ErrNoMatchingBet, fiber.StatusNotFound},
	{domain.ErrGameNotOpen, fiber.StatusConflict},
	{domain.ErrAlreadyClosed, fiber.StatusConflict},
	{domain.ErrGameNotClosed, fiber.StatusConflict},
	{domain.ErrGameNotAwaitingSettlement, fiber.StatusConflict},
	{domain.ErrBetNotPending, fiber.StatusConflict},
	{domain.ErrBetAlreadyResolved, fiber.StatusConflict},
	{domain.ErrInsufficientShares, fiber.StatusBadRequest},
	{domain.ErrNotForSale, fiber.StatusBadRequest},
	{domain.ErrInsufficientPayment, fiber.StatusBadRequest},
	{domain.ErrNoWinners, fiber.StatusBadRequest},
	{domain.ErrInvalidAmount, fiber.StatusBadRequest},
	{domain.ErrUnauthorized, fiber.StatusForbidden},
	{domain.ErrTransferFailed, fiber.StatusPaymentRequired},
}

// StatusFor maps a ledger error to its HTTP status. Faults and unknown
// errors are 500.
func StatusFor(err error) int {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return fiber.StatusInternalServerError
}

// LedgerError sends err in the standard error format. Rejections keep their
// message; faults and unexpected errors are reported generically.
func LedgerError(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	if code == fiber.StatusInternalServerError {
		if !domain.IsFault(err) {
			log.Error().Err(err).Str("path", c.Path()).Msg("unhandled ledger error")
		}
		return Error(c, "Internal Server Error", code, nil)
	}
	return Error(c, err.Error(), code, nil)
}
