package ledger

import (
	"context"
	"fmt"
	"math/bits"

	"wager-backend/internal/application/events"
	"wager-backend/internal/domain"
)

// Distribution reports how a settled game's pool was paid out. The
// remainder of the integer division stays in the settlement holding account.
type Distribution struct {
	GameID      uint         `json:"game_id"`
	Policy      PayoutPolicy `json:"policy"`
	PooledFunds int64        `json:"pooled_funds"`
	Winners     int          `json:"winners"`
	PerBetShare int64        `json:"per_bet_share"`
	Paid        int64        `json:"paid"`
	Remainder   int64        `json:"remainder"`
	Payouts     []Payout     `json:"payouts"`
}

// Payout is one transfer out of custody during distribution.
type Payout struct {
	BetID  uint             `json:"bet_id"`
	To     domain.Principal `json:"to"`
	Amount int64            `json:"amount"`
}

// DeclareWinners records the winning set of a CLOSED game, marks those bets
// WON and every other pending bet LOST, and moves the game to
// AWAITING_SETTLEMENT.
func (s *Service) DeclareWinners(ctx context.Context, caller domain.Principal, gameID uint, winningSeqs []uint) (*domain.Game, error) {
	var game *domain.Game
	err := s.run(ctx, "declare_winners", caller, func(o *op) error {
		if err := s.requireOperator(caller); err != nil {
			return err
		}
		var err error
		if game, err = loadGame(o.tx, gameID); err != nil {
			return err
		}
		if game.State != domain.GameClosed {
			return domain.ErrGameNotClosed
		}
		var recorded int64
		if err := o.tx.Model(&domain.WinningBet{}).Where("game_id = ?", game.ID).Count(&recorded).Error; err != nil {
			return err
		}
		if recorded > 0 {
			return fmt.Errorf("%w: closed game %d already has a winning set", domain.ErrInconsistentState, game.ID)
		}
		if len(winningSeqs) == 0 {
			return domain.ErrNoWinners
		}

		var bets []domain.Bet
		if err := o.tx.Where("game_id = ?", game.ID).Order("seq ASC").Find(&bets).Error; err != nil {
			return err
		}
		bySeq := make(map[uint]*domain.Bet, len(bets))
		for i := range bets {
			bySeq[bets[i].Seq] = &bets[i]
		}

		for _, seq := range winningSeqs {
			bet, ok := bySeq[seq]
			if !ok {
				return fmt.Errorf("%w: game %d bet %d", domain.ErrBetNotFound, game.ID, seq)
			}
			if bet.State != domain.BetPending {
				return fmt.Errorf("%w: bet %d is %s", domain.ErrBetAlreadyResolved, seq, bet.State)
			}
			bet.State = domain.BetWon
			if err := o.tx.Create(&domain.WinningBet{GameID: game.ID, BetSeq: seq, BetID: bet.ID}).Error; err != nil {
				return err
			}
		}

		for i := range bets {
			bet := &bets[i]
			switch bet.State {
			case domain.BetPending:
				bet.State = domain.BetLost
			case domain.BetWon:
			default:
				return fmt.Errorf("%w: bet %d of closed game %d is %s", domain.ErrInconsistentState, bet.ID, game.ID, bet.State)
			}
			if err := o.tx.Model(bet).Update("state", bet.State).Error; err != nil {
				return err
			}
			o.emit(events.BetStateChanged, game.ID, caller, map[string]interface{}{
				"bet_id": bet.Seq,
				"from":   domain.BetPending,
				"to":     bet.State,
			})
		}

		if !game.FundsInCustody {
			if game.PooledFunds > 0 {
				if err := o.transfer(domain.EscrowAccount, s.custody(), game.PooledFunds, gameMemo(domain.TransferCustody, game.ID)); err != nil {
					return err
				}
			}
			game.FundsInCustody = true
		}
		game.State = domain.GameAwaitingSettlement
		if err := o.tx.Save(game).Error; err != nil {
			return err
		}
		return checkPool(o.tx, game)
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// DistributeWinnings pays pool/winners (integer division) for every winning
// bet out of custody, marks the bets PAID_OUT and settles the game. It runs
// once: a settled game is no longer AWAITING_SETTLEMENT.
func (s *Service) DistributeWinnings(ctx context.Context, caller domain.Principal, gameID uint) (*Distribution, error) {
	var dist *Distribution
	err := s.run(ctx, "distribute_winnings", caller, func(o *op) error {
		if err := s.requireOperator(caller); err != nil {
			return err
		}
		game, err := loadGame(o.tx, gameID)
		if err != nil {
			return err
		}
		if game.State != domain.GameAwaitingSettlement {
			return domain.ErrGameNotAwaitingSettlement
		}
		if !game.FundsInCustody {
			return fmt.Errorf("%w: game %d awaiting settlement without custody", domain.ErrInconsistentState, game.ID)
		}
		if err := checkPool(o.tx, game); err != nil {
			return err
		}

		var winners []domain.WinningBet
		if err := o.tx.Where("game_id = ?", game.ID).Order("bet_seq ASC").Find(&winners).Error; err != nil {
			return err
		}
		if len(winners) == 0 {
			return fmt.Errorf("%w: game %d has no winning set", domain.ErrInconsistentState, game.ID)
		}

		policy := s.payout()
		dist = &Distribution{
			GameID:      game.ID,
			Policy:      policy,
			PooledFunds: game.PooledFunds,
			Winners:     len(winners),
			PerBetShare: game.PooledFunds / int64(len(winners)),
			Payouts:     []Payout{},
		}

		for _, w := range winners {
			var bet domain.Bet
			if err := o.tx.Where("id = ?", w.BetID).First(&bet).Error; err != nil {
				return fmt.Errorf("%w: winning bet %d of game %d: %v", domain.ErrInconsistentState, w.BetSeq, game.ID, err)
			}
			if bet.State != domain.BetWon {
				return fmt.Errorf("%w: winning bet %d is %s", domain.ErrInconsistentState, bet.Seq, bet.State)
			}

			payouts, err := s.splitShare(o, &bet, dist.PerBetShare, policy)
			if err != nil {
				return err
			}
			for _, p := range payouts {
				if err := o.transfer(s.custody(), p.To, p.Amount, betMemo(domain.TransferPayout, game.ID, bet.Seq)); err != nil {
					return err
				}
				dist.Paid += p.Amount
				dist.Payouts = append(dist.Payouts, p)
			}

			if err := o.tx.Model(&bet).Update("state", domain.BetPaidOut).Error; err != nil {
				return err
			}
			o.emit(events.BetStateChanged, game.ID, caller, map[string]interface{}{
				"bet_id": bet.Seq,
				"from":   domain.BetWon,
				"to":     domain.BetPaidOut,
			})
		}

		if dist.Paid > game.PooledFunds {
			return fmt.Errorf("%w: game %d paid %d from pool %d", domain.ErrInconsistentState, game.ID, dist.Paid, game.PooledFunds)
		}
		dist.Remainder = game.PooledFunds - dist.Paid

		game.DistributedFunds = dist.Paid
		game.Remainder = dist.Remainder
		game.State = domain.GameSettled
		if err := o.tx.Save(game).Error; err != nil {
			return err
		}
		if err := checkPool(o.tx, game); err != nil {
			return err
		}

		o.emit(events.WinningsDistributed, game.ID, caller, map[string]interface{}{
			"policy":        policy,
			"winners":       dist.Winners,
			"per_bet_share": dist.PerBetShare,
			"paid":          dist.Paid,
			"remainder":     dist.Remainder,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dist, nil
}

// splitShare decides who receives a winning bet's share. Under PayHolders
// each holding gets share*units/total; whatever the split cannot place stays
// in custody.
func (s *Service) splitShare(o *op, bet *domain.Bet, share int64, policy PayoutPolicy) ([]Payout, error) {
	if share <= 0 {
		return nil, nil
	}
	if policy != PayHolders {
		return []Payout{{BetID: bet.Seq, To: bet.PlacedBy, Amount: share}}, nil
	}

	var holdings []domain.BetHolding
	if err := o.tx.Where("bet_id = ? AND units > 0", bet.ID).Order("principal ASC").Find(&holdings).Error; err != nil {
		return nil, err
	}
	var total int64
	for _, h := range holdings {
		total += h.Units
	}
	if total != bet.TotalClaimUnits {
		return nil, fmt.Errorf("%w: bet %d holdings %d, claim units %d", domain.ErrInconsistentState, bet.ID, total, bet.TotalClaimUnits)
	}
	if total == 0 {
		return nil, nil
	}

	out := make([]Payout, 0, len(holdings))
	for _, h := range holdings {
		amount := mulDiv(share, h.Units, total)
		if amount > 0 {
			out = append(out, Payout{BetID: bet.Seq, To: h.Principal, Amount: amount})
		}
	}
	return out, nil
}

// mulDiv returns a*b/c for non-negative a, b and positive c without
// overflowing the intermediate product. The result never exceeds a when
// b <= c.
func mulDiv(a, b, c int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	q, _ := bits.Div64(hi, lo, uint64(c))
	return int64(q)
}
