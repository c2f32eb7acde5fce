package repository

import (
	"errors"
	"fmt"

	"refera/internal/domain"
	"refera/internal/idgen"
	"refera/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletRepository is the append-only ledger. Every balance change goes
// through Credit/Debit, which update the balance and append the transaction
// row inside one DB transaction so the two can never diverge.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// WithTx returns a copy bound to an open transaction, so a caller can fold
// ledger writes into a larger atomic unit (claims, transfers).
func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

func (r *WalletRepository) Get(memberID uint, kind domain.WalletKind) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("member_id = ? AND kind = ?", memberID, kind).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetOrCreate(memberID uint, kind domain.WalletKind) (*models.Wallet, error) {
	w, err := r.Get(memberID, kind)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{MemberID: memberID, Kind: kind, Balance: decimal.Zero}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// Balance returns the current balance, zero if the wallet does not exist yet.
func (r *WalletRepository) Balance(memberID uint, kind domain.WalletKind) (decimal.Decimal, error) {
	w, err := r.Get(memberID, kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return w.Balance, nil
}

// Credit appends an approved transaction for amount (signed) and moves the
// balance by the same amount atomically. A negative amount that would take
// the balance below zero fails with ErrInsufficientBalance and writes
// nothing. Callers needing per-member serialization hold the member lock.
func (r *WalletRepository) Credit(memberID uint, kind domain.WalletKind, amount decimal.Decimal, txType, description string) (*models.WalletTransaction, error) {
	var txn *models.WalletTransaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		w, err := r.WithTx(tx).GetOrCreate(memberID, kind)
		if err != nil {
			return err
		}
		newBalance := w.Balance.Add(amount)
		if newBalance.IsNegative() {
			return domain.ErrInsufficientBalance
		}
		if err := tx.Model(w).Update("balance", newBalance).Error; err != nil {
			return err
		}
		txn = &models.WalletTransaction{
			MemberID:    memberID,
			WalletID:    w.ID,
			Ref:         idgen.Ref(),
			Type:        txType,
			Amount:      amount,
			Description: description,
			Status:      domain.TxStatusApproved,
		}
		return tx.Create(txn).Error
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Debit is a credit of -amount. amount must be positive.
func (r *WalletRepository) Debit(memberID uint, kind domain.WalletKind, amount decimal.Decimal, txType, description string) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("debit amount must be positive, got %s", amount)
	}
	return r.Credit(memberID, kind, amount.Neg(), txType, description)
}

// ListTransactions returns a member's ledger entries, newest first.
func (r *WalletRepository) ListTransactions(memberID uint, limit, offset int) ([]models.WalletTransaction, error) {
	var list []models.WalletTransaction
	err := r.db.Where("member_id = ?", memberID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// SumTransactions totals all transaction amounts for a wallet. The balance
// invariant holds when this equals the wallet's stored balance.
func (r *WalletRepository) SumTransactions(walletID uint) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.Model(&models.WalletTransaction{}).
		Where("wallet_id = ?", walletID).
		Select("SUM(amount)").
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
