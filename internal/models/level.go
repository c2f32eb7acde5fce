package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Level is a member's compensation state: character level (from upline
// depth), digit level (from direct-team size and wallet thresholds), the
// last computed daily income amounts, and the once-per-day claim markers.
// One row per member, created lazily on first classification.
type Level struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	MemberID uint `gorm:"uniqueIndex;not null" json:"member_id"`

	CharacterLevel          *string         `gorm:"size:2" json:"character_level"` // A..E, nil when upline too deep
	CharacterTotalEarned    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"character_total_earned"`
	CharacterLastCalculated time.Time       `json:"character_last_calculated"`

	DigitLevel          *string         `gorm:"size:8" json:"digit_level"` // Lvl1..Lvl5, nil when no tier met
	DigitTotalEarned    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"digit_total_earned"`
	DigitLastCalculated time.Time       `json:"digit_last_calculated"`

	// Last computed daily amounts, refreshed by the snapshot job for display.
	DailyCharacterIncome decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"daily_character_income"`
	DailyDigitIncome     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"daily_digit_income"`

	LastClaimed     *time.Time `json:"last_claimed"`      // daily income claim gate (calendar-date compare)
	LastTeamClaimed *time.Time `json:"last_team_claimed"` // team income claim gate

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Member        Member              `gorm:"foreignKey:MemberID" json:"-"`
	DirectMembers []LevelDirectMember `gorm:"foreignKey:LevelID" json:"direct_members,omitempty"`
}

func (Level) TableName() string { return "levels" }

// LevelDirectMember is the cached snapshot of one direct referral taken at
// classification time. The whole set is replaced on every recompute.
type LevelDirectMember struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	LevelID       uint            `gorm:"not null;index" json:"level_id"`
	MemberID      uint            `gorm:"not null" json:"member_id"`
	JoinedAt      time.Time       `json:"joined_at"`
	WalletBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"wallet_balance"`
}

func (LevelDirectMember) TableName() string { return "level_direct_members" }
