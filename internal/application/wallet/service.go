package wallet

import (
	"context"
	"errors"
	"fmt"

	"wager-backend/internal/domain"

	"gorm.io/gorm"
)

// Service is the value-transfer primitive: principal balances plus an
// append-only transfer journal.
type Service struct {
	DB *gorm.DB
}

// Transfer moves amount from one account to another on tx. It either applies
// the debit, the credit and the journal line, or returns an error wrapping
// domain.ErrTransferFailed; the caller's transaction decides what survives.
func (s *Service) Transfer(ctx context.Context, tx *gorm.DB, from, to domain.Principal, amount int64, memo domain.TransferMemo) error {
	if amount <= 0 {
		return fmt.Errorf("%w: non-positive amount %d", domain.ErrTransferFailed, amount)
	}
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: missing account", domain.ErrTransferFailed)
	}
	tx = tx.WithContext(ctx)

	res := tx.Model(&domain.Account{}).
		Where("principal = ? AND balance >= ?", from, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: insufficient balance in %s", domain.ErrTransferFailed, from)
	}

	if err := credit(tx, to, amount); err != nil {
		return err
	}

	return tx.Create(&domain.Transfer{
		Kind:   memo.Kind,
		From:   from,
		To:     to,
		Amount: amount,
		GameID: memo.GameID,
		BetSeq: memo.BetSeq,
	}).Error
}

// Deposit funds a principal's account from outside the ledger.
func (s *Service) Deposit(ctx context.Context, to domain.Principal, amount int64) (*domain.Account, error) {
	if to.IsZero() {
		return nil, errors.New("Principal is required")
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	var acct domain.Account
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := credit(tx, to, amount); err != nil {
			return err
		}
		if err := tx.Create(&domain.Transfer{
			Kind:   domain.TransferDeposit,
			To:     to,
			Amount: amount,
		}).Error; err != nil {
			return err
		}
		return tx.Where("principal = ?", to).First(&acct).Error
	})
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// Balance returns the account of p; unknown principals have a zero balance.
func (s *Service) Balance(ctx context.Context, p domain.Principal) (*domain.Account, error) {
	var acct domain.Account
	err := s.DB.WithContext(ctx).Where("principal = ?", p).First(&acct).Error
	if err == gorm.ErrRecordNotFound {
		return &domain.Account{Principal: p}, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// ListTransfers returns every journal line touching p, newest first.
func (s *Service) ListTransfers(ctx context.Context, p domain.Principal) ([]domain.Transfer, error) {
	if p.IsZero() {
		return nil, errors.New("Principal is required")
	}
	var out []domain.Transfer
	if err := s.DB.WithContext(ctx).
		Where("from_principal = ? OR to_principal = ?", p, p).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func credit(tx *gorm.DB, to domain.Principal, amount int64) error {
	var acct domain.Account
	err := tx.Where("principal = ?", to).First(&acct).Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&domain.Account{Principal: to, Balance: amount}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&domain.Account{}).
		Where("principal = ?", to).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}
