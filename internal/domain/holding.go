package domain

// BetHolding is one principal's claim units on a bet. Holdings belong to the
// bet and are deleted with it.
type BetHolding struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	BetID     uint      `gorm:"column:bet_id;not null;uniqueIndex:idx_holding_bet_principal" json:"-"`
	Principal Principal `gorm:"column:principal;not null;uniqueIndex:idx_holding_bet_principal" json:"principal"`
	Units     int64     `gorm:"column:units;not null;default:0" json:"units"`
}

func (BetHolding) TableName() string {
	return "bet_holdings"
}
