package service

import (
	"context"
	"errors"
	"fmt"

	"refera/internal/domain"
	"refera/internal/lock"
	"refera/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSameWallet    = errors.New("source and destination wallets are the same")
	ErrSelfTransfer  = errors.New("cannot transfer to yourself")
	ErrInvalidAmount = errors.New("transfer amount must be positive")
)

// TransferService moves funds between a member's own wallets and between
// members. Both legs of a transfer run in one DB transaction so a failure
// can never leave one side moved and the other not.
type TransferService struct {
	db      *gorm.DB
	members *repository.MemberRepository
	wallets *repository.WalletRepository
	locker  lock.MemberLocker
}

func NewTransferService(db *gorm.DB, members *repository.MemberRepository, wallets *repository.WalletRepository, locker lock.MemberLocker) *TransferService {
	return &TransferService{db: db, members: members, wallets: wallets, locker: locker}
}

// TransferResult reports the post-transfer balances.
type TransferResult struct {
	Amount      decimal.Decimal `json:"amount"`
	FromBalance decimal.Decimal `json:"from_balance"`
	ToBalance   decimal.Decimal `json:"to_balance"`
}

// TransferBetweenWallets moves amount between the member's own wallets.
func (s *TransferService) TransferBetweenWallets(ctx context.Context, memberID uint, from, to domain.WalletKind, amount decimal.Decimal) (*TransferResult, error) {
	if from == to {
		return nil, ErrSameWallet
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.members.GetByID(memberID); err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, memberID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *TransferResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		wallets := s.wallets.WithTx(tx)
		if _, err := wallets.Debit(memberID, from, amount, domain.TxTransfer, fmt.Sprintf("transfer to %s wallet", to)); err != nil {
			return err
		}
		if _, err := wallets.Credit(memberID, to, amount, domain.TxTransfer, fmt.Sprintf("transfer from %s wallet", from)); err != nil {
			return err
		}
		fromBal, err := wallets.Balance(memberID, from)
		if err != nil {
			return err
		}
		toBal, err := wallets.Balance(memberID, to)
		if err != nil {
			return err
		}
		result = &TransferResult{Amount: amount, FromBalance: fromBal, ToBalance: toBal}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransferToMember moves amount from one member's normal wallet to another's.
// Both member locks are taken in ID order to avoid deadlock between two
// opposite-direction transfers.
func (s *TransferService) TransferToMember(ctx context.Context, fromID, toID uint, amount decimal.Decimal) (*TransferResult, error) {
	if fromID == toID {
		return nil, ErrSelfTransfer
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.members.GetByID(toID); err != nil {
		return nil, err
	}

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	unlockFirst, err := s.locker.Lock(ctx, first)
	if err != nil {
		return nil, err
	}
	defer unlockFirst()
	unlockSecond, err := s.locker.Lock(ctx, second)
	if err != nil {
		return nil, err
	}
	defer unlockSecond()

	var result *TransferResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		wallets := s.wallets.WithTx(tx)
		if _, err := wallets.Debit(fromID, domain.WalletNormal, amount, domain.TxTransferToUser, fmt.Sprintf("transfer to member %d", toID)); err != nil {
			return err
		}
		if _, err := wallets.Credit(toID, domain.WalletNormal, amount, domain.TxTransferFromUser, fmt.Sprintf("transfer from member %d", fromID)); err != nil {
			return err
		}
		fromBal, err := wallets.Balance(fromID, domain.WalletNormal)
		if err != nil {
			return err
		}
		toBal, err := wallets.Balance(toID, domain.WalletNormal)
		if err != nil {
			return err
		}
		result = &TransferResult{Amount: amount, FromBalance: fromBal, ToBalance: toBal}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
