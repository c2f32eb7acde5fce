package service

import (
	"refera/internal/domain"
	"refera/internal/models"
	"refera/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// IncomeBreakdown is one day's computed income for a member.
type IncomeBreakdown struct {
	Character decimal.Decimal `json:"character"`
	Digit     decimal.Decimal `json:"digit"`
}

func (b IncomeBreakdown) Total() decimal.Decimal { return b.Character.Add(b.Digit) }

// IncomeService computes daily income amounts. All methods are pure reads of
// current balances and level assignments; crediting is the claim service's
// and scheduler's job.
type IncomeService struct {
	plan    domain.CompensationPlan
	wallets *repository.WalletRepository
}

func NewIncomeService(plan domain.CompensationPlan, wallets *repository.WalletRepository) *IncomeService {
	return &IncomeService{plan: plan, wallets: wallets}
}

// DailyIncome computes both income components.
// Character income reads the immediate referrer's normal balance, not the
// whole upline, and is zero without a referrer or a character level.
// Digit income reads the member's own normal balance.
func (s *IncomeService) DailyIncome(member *models.Member, lvl *models.Level) (IncomeBreakdown, error) {
	var out IncomeBreakdown
	out.Character = decimal.Zero
	out.Digit = decimal.Zero

	if lvl.CharacterLevel != nil && member.ReferredByID != nil {
		if tier := s.plan.CharacterTierByLevel(*lvl.CharacterLevel); tier != nil {
			parentBal, err := s.wallets.Balance(*member.ReferredByID, domain.WalletNormal)
			if err != nil {
				return out, err
			}
			out.Character = parentBal.Mul(tier.Percent).Div(hundred)
		}
	}
	if lvl.DigitLevel != nil {
		if tier := s.plan.DigitTierByLevel(*lvl.DigitLevel); tier != nil {
			ownBal, err := s.wallets.Balance(member.ID, domain.WalletNormal)
			if err != nil {
				return out, err
			}
			out.Digit = ownBal.Mul(tier.Percent).Div(hundred)
		}
	}
	return out, nil
}

// SelfIncome is the flat scheduled percentage of a normal-wallet balance,
// independent of level assignments.
func (s *IncomeService) SelfIncome(balance decimal.Decimal) decimal.Decimal {
	return balance.Mul(s.plan.SelfIncomePercent).Div(hundred)
}

// WithTx returns a copy whose wallet reads run inside tx.
func (s *IncomeService) WithTx(tx *gorm.DB) *IncomeService {
	return &IncomeService{plan: s.plan, wallets: s.wallets.WithTx(tx)}
}
