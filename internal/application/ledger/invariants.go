package ledger

import (
	"fmt"

	"wager-backend/internal/domain"

	"gorm.io/gorm"
)

// checkPool verifies the custody invariant of game against the bets table:
// until settlement the pool equals the sum of bets not yet paid out; after
// settlement the pool is fully accounted for by payouts plus remainder.
func checkPool(tx *gorm.DB, game *domain.Game) error {
	if game.State == domain.GameSettled {
		if game.DistributedFunds < 0 || game.Remainder < 0 || game.DistributedFunds+game.Remainder != game.PooledFunds {
			return fmt.Errorf("%w: game %d settled pool %d, paid %d, remainder %d",
				domain.ErrInconsistentState, game.ID, game.PooledFunds, game.DistributedFunds, game.Remainder)
		}
		return nil
	}

	var live int64
	if err := tx.Model(&domain.Bet{}).
		Where("game_id = ? AND state <> ?", game.ID, domain.BetPaidOut).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&live).Error; err != nil {
		return err
	}
	if live != game.PooledFunds {
		return fmt.Errorf("%w: game %d pooled %d, live bets %d",
			domain.ErrInconsistentState, game.ID, game.PooledFunds, live)
	}
	return nil
}

// checkClaims verifies that a bet's holdings sum to its claim units and that
// no count is negative.
func checkClaims(tx *gorm.DB, bet *domain.Bet) error {
	if bet.TotalClaimUnits < 0 || bet.ListedUnits < 0 {
		return fmt.Errorf("%w: bet %d claim units %d, listed %d",
			domain.ErrInconsistentState, bet.ID, bet.TotalClaimUnits, bet.ListedUnits)
	}
	var negative int64
	if err := tx.Model(&domain.BetHolding{}).Where("bet_id = ? AND units < 0", bet.ID).Count(&negative).Error; err != nil {
		return err
	}
	var held int64
	if err := tx.Model(&domain.BetHolding{}).
		Where("bet_id = ?", bet.ID).
		Select("COALESCE(SUM(units), 0)").
		Scan(&held).Error; err != nil {
		return err
	}
	if negative > 0 || held != bet.TotalClaimUnits {
		return fmt.Errorf("%w: bet %d holdings %d, claim units %d",
			domain.ErrInconsistentState, bet.ID, held, bet.TotalClaimUnits)
	}
	return nil
}
