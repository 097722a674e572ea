package domain

import "time"

// BetState moves PENDING -> WON|LOST once, and WON -> PAID_OUT once.
type BetState string

const (
	BetPending BetState = "PENDING"
	BetWon     BetState = "WON"
	BetLost    BetState = "LOST"
	BetPaidOut BetState = "PAID_OUT"
)

// Bet is a wager against one game. Seq identifies the bet within its game and
// is never reused after a withdrawal. TotalClaimUnits always equals the sum of
// the bet's holdings; ListedUnits are units retired into the outstanding ask.
type Bet struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	GameID          uint      `gorm:"column:game_id;not null;uniqueIndex:idx_bet_game_seq" json:"game_id"`
	Seq             uint      `gorm:"column:seq;not null;uniqueIndex:idx_bet_game_seq" json:"bet_id"`
	PlacedBy        Principal `gorm:"column:placed_by;not null;index" json:"placed_by"`
	Amount          int64     `gorm:"column:amount;not null" json:"amount"`
	SelectedOutcome int       `gorm:"column:selected_outcome;not null" json:"selected_outcome"`
	State           BetState  `gorm:"column:state;type:varchar(16);not null;default:'PENDING'" json:"state"`
	AskPrice        int64     `gorm:"column:ask_price;not null;default:0" json:"ask_price"`
	ListedUnits     int64     `gorm:"column:listed_units;not null;default:0" json:"listed_units"`
	TotalClaimUnits int64     `gorm:"column:total_claim_units;not null" json:"total_claim_units"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Bet) TableName() string {
	return "bets"
}

// ForSale reports whether the bet has an outstanding ask.
func (b *Bet) ForSale() bool {
	return b.AskPrice > 0
}
