package settlement

import (
	"wager-backend/internal/application/ledger"
	"wager-backend/internal/middleware"
	"wager-backend/internal/pkg/response"
	"wager-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Ledger *ledger.Service
}

// DeclareWinners POST /api/v1/games/:game_id/winners
func (h *Handlers) DeclareWinners(c *fiber.Ctx) error {
	gameID, ok := validation.ParseID(c.Params("game_id"))
	if !ok {
		return response.Error(c, "Invalid game_id", 400, nil)
	}
	var body struct {
		BetIDs []uint `json:"bet_ids"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	game, err := h.Ledger.DeclareWinners(c.UserContext(), middleware.GetPrincipal(c), gameID, body.BetIDs)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Winners declared", game, nil)
}

// DistributeWinnings POST /api/v1/games/:game_id/distribute
func (h *Handlers) DistributeWinnings(c *fiber.Ctx) error {
	gameID, ok := validation.ParseID(c.Params("game_id"))
	if !ok {
		return response.Error(c, "Invalid game_id", 400, nil)
	}
	dist, err := h.Ledger.DistributeWinnings(c.UserContext(), middleware.GetPrincipal(c), gameID)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Winnings distributed", dist, nil)
}
