package wallet

import (
	"context"
	"testing"

	"wager-backend/internal/domain"
	"wager-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWallet(t *testing.T) (*Service, *gorm.DB) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func TestDeposit_CreatesAndTopsUp(t *testing.T) {
	svc, _ := setupWallet(t)
	ctx := context.Background()

	acct, err := svc.Deposit(ctx, "alice", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), acct.Balance)

	acct, err = svc.Deposit(ctx, "alice", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(150), acct.Balance)

	_, err = svc.Deposit(ctx, "alice", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestTransfer_MovesValueAndJournals(t *testing.T) {
	svc, db := setupWallet(t)
	ctx := context.Background()
	_, err := svc.Deposit(ctx, "alice", 100)
	require.NoError(t, err)

	gameID := uint(1)
	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Transfer(ctx, tx, "alice", domain.EscrowAccount, 60, domain.TransferMemo{Kind: domain.TransferWager, GameID: &gameID})
	})
	require.NoError(t, err)

	alice, err := svc.Balance(ctx, "alice")
	require.NoError(t, err)
	escrow, err := svc.Balance(ctx, domain.EscrowAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(40), alice.Balance)
	assert.Equal(t, int64(60), escrow.Balance)

	lines, err := svc.ListTransfers(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	var kinds []string
	for _, l := range lines {
		kinds = append(kinds, l.Kind)
	}
	assert.ElementsMatch(t, []string{domain.TransferDeposit, domain.TransferWager}, kinds)
}

func TestTransfer_InsufficientBalanceFails(t *testing.T) {
	svc, db := setupWallet(t)
	ctx := context.Background()
	_, err := svc.Deposit(ctx, "alice", 10)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Transfer(ctx, tx, "alice", "bob", 11, domain.TransferMemo{Kind: domain.TransferShareBuy})
	})
	assert.ErrorIs(t, err, domain.ErrTransferFailed)

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Transfer(ctx, tx, "nobody", "bob", 1, domain.TransferMemo{})
	})
	assert.ErrorIs(t, err, domain.ErrTransferFailed)

	bob, err := svc.Balance(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bob.Balance)
}

func TestTransfer_RolledBackWithEnclosingTransaction(t *testing.T) {
	svc, db := setupWallet(t)
	ctx := context.Background()
	_, err := svc.Deposit(ctx, "alice", 100)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Transfer(ctx, tx, "alice", "bob", 30, domain.TransferMemo{Kind: domain.TransferPayout}); err != nil {
			return err
		}
		return svc.Transfer(ctx, tx, "alice", "carol", 500, domain.TransferMemo{Kind: domain.TransferPayout})
	})
	require.ErrorIs(t, err, domain.ErrTransferFailed)

	alice, _ := svc.Balance(ctx, "alice")
	bob, _ := svc.Balance(ctx, "bob")
	assert.Equal(t, int64(100), alice.Balance)
	assert.Equal(t, int64(0), bob.Balance)
}

func TestTransfer_RejectsNonPositiveAmount(t *testing.T) {
	svc, db := setupWallet(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Transfer(context.Background(), tx, "alice", "bob", 0, domain.TransferMemo{})
	})
	assert.ErrorIs(t, err, domain.ErrTransferFailed)
}
