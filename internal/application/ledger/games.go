package ledger

import (
	"context"

	"wager-backend/internal/application/events"
	"wager-backend/internal/domain"
)

// GameView is a read-only snapshot of a game, its live bets ordered by id,
// and its winning set once declared.
type GameView struct {
	Game    domain.Game  `json:"game"`
	Bets    []domain.Bet `json:"bets"`
	Winners []uint       `json:"winners"`
}

// CreateGame appends a new OPEN game with no bets and an empty pool.
func (s *Service) CreateGame(ctx context.Context, caller domain.Principal, description string) (*domain.Game, error) {
	var game domain.Game
	err := s.run(ctx, "create_game", caller, func(o *op) error {
		if err := s.requireOperator(caller); err != nil {
			return err
		}
		game = domain.Game{
			Description: description,
			State:       domain.GameOpen,
			CreatedBy:   caller,
		}
		if err := o.tx.Create(&game).Error; err != nil {
			return err
		}
		o.emit(events.GameCreated, game.ID, caller, map[string]interface{}{
			"description": game.Description,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// CloseGame stops betting on an OPEN game and moves its pool from escrow to
// the settlement holding account.
func (s *Service) CloseGame(ctx context.Context, caller domain.Principal, gameID uint) (*domain.Game, error) {
	var game *domain.Game
	err := s.run(ctx, "close_game", caller, func(o *op) error {
		if err := s.requireOperator(caller); err != nil {
			return err
		}
		var err error
		if game, err = loadGame(o.tx, gameID); err != nil {
			return err
		}
		if game.State != domain.GameOpen {
			return domain.ErrAlreadyClosed
		}
		if err := checkPool(o.tx, game); err != nil {
			return err
		}

		if game.PooledFunds > 0 {
			if err := o.transfer(domain.EscrowAccount, s.custody(), game.PooledFunds, gameMemo(domain.TransferCustody, game.ID)); err != nil {
				return err
			}
		}
		game.FundsInCustody = true
		game.State = domain.GameClosed
		if err := o.tx.Save(game).Error; err != nil {
			return err
		}
		o.emit(events.GameClosed, game.ID, caller, map[string]interface{}{
			"pooled_funds": game.PooledFunds,
			"custody":      s.custody(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// GetGame returns a snapshot of the game.
func (s *Service) GetGame(ctx context.Context, gameID uint) (*GameView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := s.DB.WithContext(ctx)
	game, err := loadGame(tx, gameID)
	if err != nil {
		return nil, err
	}
	view := &GameView{Game: *game, Bets: []domain.Bet{}, Winners: []uint{}}
	if err := tx.Where("game_id = ?", gameID).Order("seq ASC").Find(&view.Bets).Error; err != nil {
		return nil, err
	}
	var winners []domain.WinningBet
	if err := tx.Where("game_id = ?", gameID).Order("bet_seq ASC").Find(&winners).Error; err != nil {
		return nil, err
	}
	for _, w := range winners {
		view.Winners = append(view.Winners, w.BetSeq)
	}
	return view, nil
}
