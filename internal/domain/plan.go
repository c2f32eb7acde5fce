package domain

import "github.com/shopspring/decimal"

// CharacterTier pairs a character level with its daily income percentage.
// The tier for a member is chosen by upline depth: index 0 (no referrer) is
// level A, index 4 is level E, anything deeper earns no character level.
type CharacterTier struct {
	Level   string
	Percent decimal.Decimal
}

// DigitTier holds the qualification criteria and income percentage for one
// digit level. DirectMembers counts only valid members (direct referrals whose
// normal wallet holds at least CompensationPlan.ValidMemberMinBalance).
type DigitTier struct {
	Level         string
	DirectMembers int
	SelfWalletMin decimal.Decimal
	Percent       decimal.Decimal
}

// CompensationPlan is the full threshold/percentage table driving level
// classification and income. It is built once at startup (defaults plus
// config overrides) and injected; nothing in the plan mutates at runtime.
type CompensationPlan struct {
	CharacterTiers []CharacterTier // indexed by upline depth
	DigitTiers     []DigitTier     // ascending Lvl1..Lvl5

	// ValidMemberMinBalance is the normal-wallet minimum a direct referral
	// must hold to count toward digit-level criteria.
	ValidMemberMinBalance decimal.Decimal

	// SelfIncomePercent is the flat percentage credited by the scheduled
	// self-income job, independent of levels.
	SelfIncomePercent decimal.Decimal

	MaxUplineDepth   int
	MaxDownlineLevel int
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultPlan returns the stock compensation plan.
func DefaultPlan() CompensationPlan {
	return CompensationPlan{
		CharacterTiers: []CharacterTier{
			{Level: CharacterA, Percent: dec("0.5")},
			{Level: CharacterB, Percent: dec("0.4")},
			{Level: CharacterC, Percent: dec("0.3")},
			{Level: CharacterD, Percent: dec("0.2")},
			{Level: CharacterE, Percent: dec("0.1")},
		},
		DigitTiers: []DigitTier{
			{Level: DigitLvl1, DirectMembers: 5, SelfWalletMin: dec("200"), Percent: dec("0.35")},
			{Level: DigitLvl2, DirectMembers: 10, SelfWalletMin: dec("500"), Percent: dec("0.5")},
			{Level: DigitLvl3, DirectMembers: 20, SelfWalletMin: dec("1100"), Percent: dec("0.75")},
			{Level: DigitLvl4, DirectMembers: 40, SelfWalletMin: dec("2500"), Percent: dec("1")},
			{Level: DigitLvl5, DirectMembers: 80, SelfWalletMin: dec("10000"), Percent: dec("1.5")},
		},
		ValidMemberMinBalance: dec("50"),
		SelfIncomePercent:     dec("0.5"),
		MaxUplineDepth:        5,
		MaxDownlineLevel:      5,
	}
}

// CharacterTierAt returns the tier for an upline depth, or nil when the depth
// exceeds the table (no character level).
func (p CompensationPlan) CharacterTierAt(depth int) *CharacterTier {
	if depth < 0 || depth >= len(p.CharacterTiers) {
		return nil
	}
	return &p.CharacterTiers[depth]
}

// CharacterTierByLevel returns the tier with the given level name, or nil.
func (p CompensationPlan) CharacterTierByLevel(level string) *CharacterTier {
	for i := range p.CharacterTiers {
		if p.CharacterTiers[i].Level == level {
			return &p.CharacterTiers[i]
		}
	}
	return nil
}

// DigitTierByLevel returns the digit tier with the given level name, or nil.
func (p CompensationPlan) DigitTierByLevel(level string) *DigitTier {
	for i := range p.DigitTiers {
		if p.DigitTiers[i].Level == level {
			return &p.DigitTiers[i]
		}
	}
	return nil
}

// ClassifyDigit returns the highest digit tier whose criteria are met, or nil.
// Tiers are evaluated from the top down; the first match wins.
func (p CompensationPlan) ClassifyDigit(validMembers int, selfBalance decimal.Decimal) *DigitTier {
	for i := len(p.DigitTiers) - 1; i >= 0; i-- {
		t := &p.DigitTiers[i]
		if validMembers >= t.DirectMembers && selfBalance.GreaterThanOrEqual(t.SelfWalletMin) {
			return t
		}
	}
	return nil
}
