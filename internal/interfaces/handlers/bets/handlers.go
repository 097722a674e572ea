package bets

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

// PlaceBet POST /api/v1/games/:game_id/bets
func (h *Handlers) PlaceBet(c *fiber.Ctx) error {
	gameID, ok := validation.ParseID(c.Params("game_id"))
	if !ok {
		return response.Error(c, "Invalid game_id", 400, nil)
	}
	var body struct {
		Outcome *int  `json:"outcome"`
		Amount  int64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil || body.Outcome == nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	bet, err := h.Ledger.PlaceBet(c.UserContext(), middleware.GetPrincipal(c), gameID, *body.Outcome, body.Amount)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.SuccessCreated(c, "Bet placed", bet, nil)
}

// RemoveBet DELETE /api/v1/games/:game_id/bets
func (h *Handlers) RemoveBet(c *fiber.Ctx) error {
	gameID, ok := validation.ParseID(c.Params("game_id"))
	if !ok {
		return response.Error(c, "Invalid game_id", 400, nil)
	}
	bet, err := h.Ledger.RemoveBet(c.UserContext(), middleware.GetPrincipal(c), gameID)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Bet removed", bet, nil)
}

// GetBet GET /api/v1/games/:game_id/bets/:bet_id
func (h *Handlers) GetBet(c *fiber.Ctx) error {
	gameID, seq, ok := betPath(c)
	if !ok {
		return response.Error(c, "Invalid game_id or bet_id", 400, nil)
	}
	view, err := h.Ledger.GetBet(c.UserContext(), gameID, seq)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Bet fetched", view, nil)
}

// ListForSale POST /api/v1/games/:game_id/bets/:bet_id/list
func (h *Handlers) ListForSale(c *fiber.Ctx) error {
	gameID, seq, ok := betPath(c)
	if !ok {
		return response.Error(c, "Invalid game_id or bet_id", 400, nil)
	}
	var body struct {
		Price int64 `json:"price"`
		Units int64 `json:"units"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	bet, err := h.Ledger.ListForSale(c.UserContext(), middleware.GetPrincipal(c), gameID, seq, body.Price, body.Units)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Shares listed", bet, nil)
}

// BuyShares POST /api/v1/games/:game_id/bets/:bet_id/buy
func (h *Handlers) BuyShares(c *fiber.Ctx) error {
	gameID, seq, ok := betPath(c)
	if !ok {
		return response.Error(c, "Invalid game_id or bet_id", 400, nil)
	}
	var body struct {
		Payment int64 `json:"payment"`
		Units   int64 `json:"units"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	bet, err := h.Ledger.BuyShares(c.UserContext(), middleware.GetPrincipal(c), gameID, seq, body.Payment, body.Units)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Shares bought", bet, nil)
}

func betPath(c *fiber.Ctx) (gameID, seq uint, ok bool) {
	if gameID, ok = validation.ParseID(c.Params("game_id")); !ok {
		return 0, 0, false
	}
	seq, ok = validation.ParseID(c.Params("bet_id"))
	return gameID, seq, ok
}
