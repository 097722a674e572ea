package ledger

import (
	"context"
	"math"

	"wager-backend/internal/application/events"
	"wager-backend/internal/domain"

	"gorm.io/gorm"
)

// ListForSale retires units of caller's holding on a PENDING bet into the
// bet's single ask and sets the ask price. A later listing overwrites the
// price and adds its units to the same ask.
func (s *Service) ListForSale(ctx context.Context, caller domain.Principal, gameID, seq uint, price, units int64) (*domain.Bet, error) {
	var bet *domain.Bet
	err := s.run(ctx, "list_for_sale", caller, func(o *op) error {
		if price <= 0 || units <= 0 {
			return domain.ErrInvalidAmount
		}
		if _, err := loadGame(o.tx, gameID); err != nil {
			return err
		}
		var err error
		if bet, err = loadBet(o.tx, gameID, seq); err != nil {
			return err
		}
		if bet.State != domain.BetPending {
			return domain.ErrBetNotPending
		}

		var holding domain.BetHolding
		if err := o.tx.Where("bet_id = ? AND principal = ?", bet.ID, caller).First(&holding).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrInsufficientShares
			}
			return err
		}
		if holding.Units < units {
			return domain.ErrInsufficientShares
		}

		holding.Units -= units
		if err := saveHolding(o.tx, &holding); err != nil {
			return err
		}
		bet.TotalClaimUnits -= units
		bet.ListedUnits += units
		bet.AskPrice = price
		if err := o.tx.Save(bet).Error; err != nil {
			return err
		}
		if err := checkClaims(o.tx, bet); err != nil {
			return err
		}

		o.emit(events.SharesListed, gameID, caller, map[string]interface{}{
			"bet_id":       bet.Seq,
			"ask_price":    price,
			"units":        units,
			"listed_units": bet.ListedUnits,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

// BuyShares buys listed units at the ask price. Exactly askPrice*units is
// paid to the bet's placer; payment is the most the buyer will spend.
func (s *Service) BuyShares(ctx context.Context, caller domain.Principal, gameID, seq uint, payment, units int64) (*domain.Bet, error) {
	var bet *domain.Bet
	err := s.run(ctx, "buy_shares", caller, func(o *op) error {
		if units <= 0 {
			return domain.ErrInvalidAmount
		}
		if _, err := loadGame(o.tx, gameID); err != nil {
			return err
		}
		var err error
		if bet, err = loadBet(o.tx, gameID, seq); err != nil {
			return err
		}
		if !bet.ForSale() {
			return domain.ErrNotForSale
		}
		if units > bet.ListedUnits {
			return domain.ErrInsufficientShares
		}
		if units > math.MaxInt64/bet.AskPrice {
			return domain.ErrInvalidAmount
		}
		cost := bet.AskPrice * units
		if payment < cost {
			return domain.ErrInsufficientPayment
		}

		if err := o.transfer(caller, bet.PlacedBy, cost, betMemo(domain.TransferShareBuy, gameID, bet.Seq)); err != nil {
			return err
		}

		var holding domain.BetHolding
		err = o.tx.Where("bet_id = ? AND principal = ?", bet.ID, caller).First(&holding).Error
		if err == gorm.ErrRecordNotFound {
			holding = domain.BetHolding{BetID: bet.ID, Principal: caller}
		} else if err != nil {
			return err
		}
		holding.Units += units
		if err := saveHolding(o.tx, &holding); err != nil {
			return err
		}

		price := bet.AskPrice
		bet.TotalClaimUnits += units
		bet.ListedUnits -= units
		if bet.ListedUnits == 0 {
			bet.AskPrice = 0
		}
		if err := o.tx.Save(bet).Error; err != nil {
			return err
		}
		if err := checkClaims(o.tx, bet); err != nil {
			return err
		}

		o.emit(events.ShareSold, gameID, caller, map[string]interface{}{
			"bet_id":    bet.Seq,
			"buyer":     caller,
			"paid_to":   bet.PlacedBy,
			"units":     units,
			"ask_price": price,
			"cost":      cost,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

// saveHolding persists h, dropping the row once it holds nothing.
func saveHolding(tx *gorm.DB, h *domain.BetHolding) error {
	if h.Units == 0 {
		if h.ID == 0 {
			return nil
		}
		return tx.Delete(&domain.BetHolding{}, h.ID).Error
	}
	return tx.Save(h).Error
}
