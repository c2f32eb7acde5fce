package models

import (
	"time"

	"refera/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet is one of a member's two balances (normal or investment). The
// balance must equal the sum of the wallet's transaction amounts after every
// mutation; all changes go through the ledger in WalletRepository.
type Wallet struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	MemberID  uint              `gorm:"uniqueIndex:idx_wallets_member_kind;not null" json:"member_id"`
	Kind      domain.WalletKind `gorm:"uniqueIndex:idx_wallets_member_kind;size:16;not null" json:"kind"`
	Balance   decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"balance"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (Wallet) TableName() string { return "wallets" }
