package ledger

import (
	"context"

	"wager-backend/internal/application/events"
	"wager-backend/internal/domain"

	"gorm.io/gorm"
)

// BetView is a read-only snapshot of a bet and who holds its claim units.
type BetView struct {
	Bet      domain.Bet          `json:"bet"`
	Holdings []domain.BetHolding `json:"holdings"`
}

// PlaceBet collects amount from caller into escrow and records a PENDING bet
// whose claim units are all held by caller.
func (s *Service) PlaceBet(ctx context.Context, caller domain.Principal, gameID uint, outcome int, amount int64) (*domain.Bet, error) {
	var bet domain.Bet
	err := s.run(ctx, "place_bet", caller, func(o *op) error {
		if amount <= 0 {
			return domain.ErrInvalidAmount
		}
		game, err := loadGame(o.tx, gameID)
		if err != nil {
			return err
		}
		if game.State != domain.GameOpen {
			return domain.ErrGameNotOpen
		}

		seq := game.NextBetSeq
		if err := o.transfer(caller, domain.EscrowAccount, amount, betMemo(domain.TransferWager, game.ID, seq)); err != nil {
			return err
		}

		bet = domain.Bet{
			GameID:          game.ID,
			Seq:             seq,
			PlacedBy:        caller,
			Amount:          amount,
			SelectedOutcome: outcome,
			State:           domain.BetPending,
			TotalClaimUnits: amount,
		}
		if err := o.tx.Create(&bet).Error; err != nil {
			return err
		}
		if err := o.tx.Create(&domain.BetHolding{BetID: bet.ID, Principal: caller, Units: amount}).Error; err != nil {
			return err
		}

		game.NextBetSeq++
		game.PooledFunds += amount
		if err := o.tx.Save(game).Error; err != nil {
			return err
		}
		if err := checkPool(o.tx, game); err != nil {
			return err
		}
		if err := checkClaims(o.tx, &bet); err != nil {
			return err
		}

		o.emit(events.BetPlaced, game.ID, caller, map[string]interface{}{
			"bet_id":  bet.Seq,
			"outcome": outcome,
			"amount":  amount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// RemoveBet withdraws caller's earliest bet in an OPEN game, refunding its
// amount and deleting the bet with its holdings.
func (s *Service) RemoveBet(ctx context.Context, caller domain.Principal, gameID uint) (*domain.Bet, error) {
	var bet domain.Bet
	err := s.run(ctx, "remove_bet", caller, func(o *op) error {
		game, err := loadGame(o.tx, gameID)
		if err != nil {
			return err
		}
		if game.State != domain.GameOpen {
			return domain.ErrGameNotOpen
		}

		if err := o.tx.Where("game_id = ? AND placed_by = ?", game.ID, caller).Order("seq ASC").First(&bet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNoMatchingBet
			}
			return err
		}

		if err := o.transfer(domain.EscrowAccount, caller, bet.Amount, betMemo(domain.TransferRefund, game.ID, bet.Seq)); err != nil {
			return err
		}
		if err := o.tx.Where("bet_id = ?", bet.ID).Delete(&domain.BetHolding{}).Error; err != nil {
			return err
		}
		if err := o.tx.Delete(&domain.Bet{}, bet.ID).Error; err != nil {
			return err
		}

		game.PooledFunds -= bet.Amount
		if err := o.tx.Save(game).Error; err != nil {
			return err
		}
		if err := checkPool(o.tx, game); err != nil {
			return err
		}

		o.emit(events.BetWithdrawn, game.ID, caller, map[string]interface{}{
			"bet_id": bet.Seq,
			"amount": bet.Amount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// GetBet returns a snapshot of the bet and its holdings.
func (s *Service) GetBet(ctx context.Context, gameID, seq uint) (*BetView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := s.DB.WithContext(ctx)
	if _, err := loadGame(tx, gameID); err != nil {
		return nil, err
	}
	bet, err := loadBet(tx, gameID, seq)
	if err != nil {
		return nil, err
	}
	view := &BetView{Bet: *bet, Holdings: []domain.BetHolding{}}
	if err := tx.Where("bet_id = ?", bet.ID).Order("principal ASC").Find(&view.Holdings).Error; err != nil {
		return nil, err
	}
	return view, nil
}
