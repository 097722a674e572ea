package domain

import "time"

// Account is a principal's spendable balance in minor units.
type Account struct {
	Principal Principal `gorm:"column:principal;primaryKey" json:"principal"`
	Balance   int64     `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
