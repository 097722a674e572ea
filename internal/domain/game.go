package domain

import "time"

// GameState is the lifecycle position of a game. The only edges are
// OPEN -> CLOSED -> AWAITING_SETTLEMENT -> SETTLED.
type GameState string

const (
	GameOpen               GameState = "OPEN"
	GameClosed             GameState = "CLOSED"
	GameAwaitingSettlement GameState = "AWAITING_SETTLEMENT"
	GameSettled            GameState = "SETTLED"
)

// Game is a wagering event. PooledFunds tracks the sum of live bet amounts and
// keeps that value through settlement; FundsInCustody records whether the
// pool has moved from escrow into the settlement holding account.
type Game struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Description      string    `gorm:"column:description;not null" json:"description"`
	State            GameState `gorm:"column:state;type:varchar(24);not null;default:'OPEN'" json:"state"`
	PooledFunds      int64     `gorm:"column:pooled_funds;not null;default:0" json:"pooled_funds"`
	FundsInCustody   bool      `gorm:"column:funds_in_custody;not null;default:false" json:"funds_in_custody"`
	NextBetSeq       uint      `gorm:"column:next_bet_seq;not null;default:0" json:"-"`
	DistributedFunds int64     `gorm:"column:distributed_funds;not null;default:0" json:"distributed_funds"`
	Remainder        int64     `gorm:"column:remainder;not null;default:0" json:"remainder"`
	CreatedBy        Principal `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Game) TableName() string {
	return "games"
}

// WinningBet records one member of a game's winning set. Rows are written
// once, at winner declaration, and never updated.
type WinningBet struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	GameID    uint      `gorm:"column:game_id;not null;uniqueIndex:idx_winning_game_seq" json:"game_id"`
	BetSeq    uint      `gorm:"column:bet_seq;not null;uniqueIndex:idx_winning_game_seq" json:"bet_seq"`
	BetID     uint      `gorm:"column:bet_id;not null" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (WinningBet) TableName() string {
	return "winning_bets"
}
