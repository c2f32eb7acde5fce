package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Member struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Username     string          `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string          `gorm:"size:255" json:"-"`
	Role         string          `gorm:"size:20;not null;index;default:'MEMBER'" json:"role"` // MEMBER | ADMIN
	ReferredByID *uint           `gorm:"index" json:"referred_by_id"`                         // upline pointer; nil for roots
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	IsBlocked    bool            `gorm:"default:false" json:"is_blocked"`
	TotalEarned  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_earned"` // lifetime scheduled income
	TodayEarned  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"today_earned"` // reset by the daily snapshot job
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	ReferredBy *Member  `gorm:"foreignKey:ReferredByID" json:"-"`
	Wallets    []Wallet `gorm:"foreignKey:MemberID" json:"wallets,omitempty"`
}

func (m *Member) IsAdmin() bool { return m.Role == "ADMIN" }
