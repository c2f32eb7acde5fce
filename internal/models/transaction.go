package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletTransaction is one append-only ledger entry. Amount is signed:
// positive = credit, negative = debit. Entries are immutable once written
// except for status transitions in the deposit/withdrawal approval flows.
type WalletTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MemberID    uint            `gorm:"not null;index" json:"member_id"`
	WalletID    uint            `gorm:"not null;index" json:"wallet_id"`
	Ref         string          `gorm:"uniqueIndex;size:32;not null" json:"ref"` // snowflake reference
	Type        string          `gorm:"size:30;not null;index" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description string          `gorm:"size:255" json:"description"`
	Status      string          `gorm:"size:16;not null;default:'approved'" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (WalletTransaction) TableName() string { return "wallet_transactions" }
