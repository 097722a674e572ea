package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transfer kinds recorded in the journal.
const (
	TransferDeposit  = "deposit"
	TransferWager    = "wager"
	TransferRefund   = "refund"
	TransferCustody  = "custody"
	TransferShareBuy = "share_purchase"
	TransferPayout   = "payout"
)

// Transfer is one journal line of the value-transfer primitive.
type Transfer struct {
	TransferID uuid.UUID `gorm:"column:transfer_id;type:uuid;primaryKey" json:"transfer_id"`
	Kind       string    `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	From       Principal `gorm:"column:from_principal;index" json:"from"`
	To         Principal `gorm:"column:to_principal;not null;index" json:"to"`
	Amount     int64     `gorm:"column:amount;not null" json:"amount"`
	GameID     *uint     `gorm:"column:game_id;index" json:"game_id"`
	BetSeq     *uint     `gorm:"column:bet_seq" json:"bet_id"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Transfer) TableName() string {
	return "transfers"
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.TransferID == uuid.Nil {
		t.TransferID = uuid.New()
	}
	return nil
}

// TransferMemo tags a transfer with the ledger context that caused it.
type TransferMemo struct {
	Kind   string
	GameID *uint
	BetSeq *uint
}
