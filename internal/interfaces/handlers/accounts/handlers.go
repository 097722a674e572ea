package accounts

import (
	holdsvc "wager-backend/internal/application/holdings"
	"wager-backend/internal/application/wallet"
	"wager-backend/internal/domain"
	"wager-backend/internal/pkg/response"
	"wager-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Wallet   *wallet.Service
	Holdings *holdsvc.Service
}

// Deposit POST /api/v1/accounts/deposit
func (h *Handlers) Deposit(c *fiber.Ctx) error {
	var body struct {
		Principal string `json:"principal"`
		Amount    int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if !validation.IsValidPrincipal(body.Principal) {
		return response.Error(c, "Invalid principal", 400, nil)
	}
	acct, err := h.Wallet.Deposit(c.UserContext(), domain.Principal(body.Principal), body.Amount)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Deposit recorded", acct, nil)
}

// Balance GET /api/v1/accounts/:principal
func (h *Handlers) Balance(c *fiber.Ctx) error {
	acct, err := h.Wallet.Balance(c.UserContext(), domain.ParsePrincipal(c.Params("principal")))
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Balance fetched", acct, nil)
}

// ListTransfers GET /api/v1/accounts/:principal/transfers
func (h *Handlers) ListTransfers(c *fiber.Ctx) error {
	list, err := h.Wallet.ListTransfers(c.UserContext(), domain.ParsePrincipal(c.Params("principal")))
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Transfers fetched", list, fiber.Map{"count": len(list)})
}

// ViewHoldings GET /api/v1/accounts/:principal/holdings
func (h *Handlers) ViewHoldings(c *fiber.Ctx) error {
	list, err := h.Holdings.ViewHoldings(c.UserContext(), domain.ParsePrincipal(c.Params("principal")))
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Holdings fetched", list, fiber.Map{"count": len(list)})
}
