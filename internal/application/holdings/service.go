package holdings

import (
	"context"
	"errors"

	"wager-backend/internal/domain"

	"gorm.io/gorm"
)

// Service serves a principal's claim units across every bet.
type Service struct {
	DB *gorm.DB
}

// Position is one holding joined with its bet and game.
type Position struct {
	GameID    uint             `json:"game_id"`
	GameState domain.GameState `json:"game_state"`
	BetID     uint             `json:"bet_id"`
	BetState  domain.BetState  `json:"bet_state"`
	PlacedBy  domain.Principal `json:"placed_by"`
	Units     int64            `json:"units"`
	Claim     int64            `json:"total_claim_units"`
}

// ViewHoldings returns every holding of p, ordered by game and bet.
func (s *Service) ViewHoldings(ctx context.Context, p domain.Principal) ([]Position, error) {
	if p.IsZero() {
		return nil, errors.New("Principal is required")
	}
	out := []Position{}
	err := s.DB.WithContext(ctx).
		Table("bet_holdings AS h").
		Select("g.id AS game_id, g.state AS game_state, b.seq AS bet_id, b.state AS bet_state, b.placed_by AS placed_by, h.units AS units, b.total_claim_units AS claim").
		Joins("JOIN bets b ON b.id = h.bet_id").
		Joins("JOIN games g ON g.id = b.game_id").
		Where("h.principal = ? AND h.units > 0", p).
		Order("g.id ASC, b.seq ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
