package games

import (
	eventsvc "wager-backend/internal/application/events"
	"wager-backend/internal/application/ledger"
	"wager-backend/internal/middleware"
	"wager-backend/internal/pkg/response"
	"wager-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Ledger *ledger.Service
	Events *eventsvc.Service
}

// CreateGame POST /api/v1/games
func (h *Handlers) CreateGame(c *fiber.Ctx) error {
	var body struct {
		Description string `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if !validation.IsValidDescription(body.Description) {
		return response.Error(c, "Invalid description", 400, nil)
	}
	game, err := h.Ledger.CreateGame(c.UserContext(), middleware.GetPrincipal(c), body.Description)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.SuccessCreated(c, "Game created", game, nil)
}

// GetGame GET /api/v1/games/:game_id
func (h *Handlers) GetGame(c *fiber.Ctx) error {
	gameID, ok := validation.ParseID(c.Params("game_id"))
	if !ok {
		return response.Error(c, "Invalid game_id", 400, nil)
	}
	view, err := h.Ledger.GetGame(c.UserContext(), gameID)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Game fetched", view, nil)
}

// CloseGame POST /api/v1/games/:game_id/close
func (h *Handlers) CloseGame(c *fiber.Ctx) error {
	gameID, ok := validation.ParseID(c.Params("game_id"))
	if !ok {
		return response.Error(c, "Invalid game_id", 400, nil)
	}
	game, err := h.Ledger.CloseGame(c.UserContext(), middleware.GetPrincipal(c), gameID)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Game closed", game, nil)
}

// GetGameEvents GET /api/v1/games/:game_id/events
func (h *Handlers) GetGameEvents(c *fiber.Ctx) error {
	gameID, ok := validation.ParseID(c.Params("game_id"))
	if !ok {
		return response.Error(c, "Invalid game_id", 400, nil)
	}
	if h.Events == nil {
		return response.Error(c, "Event log not configured", 501, nil)
	}
	list, err := h.Events.GetGameEvents(c.UserContext(), gameID)
	if err != nil {
		return response.LedgerError(c, err)
	}
	return response.Success(c, "Game events fetched", list, fiber.Map{"count": len(list)})
}
