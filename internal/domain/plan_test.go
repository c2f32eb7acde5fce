package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterTierAt(t *testing.T) {
	p := DefaultPlan()

	tests := []struct {
		depth int
		level string
	}{
		{0, CharacterA},
		{1, CharacterB},
		{2, CharacterC},
		{3, CharacterD},
		{4, CharacterE},
	}
	for _, tt := range tests {
		tier := p.CharacterTierAt(tt.depth)
		require.NotNil(t, tier, "depth %d", tt.depth)
		assert.Equal(t, tt.level, tier.Level)
	}
	assert.Nil(t, p.CharacterTierAt(5))
	assert.Nil(t, p.CharacterTierAt(-1))
}

func TestClassifyDigit(t *testing.T) {
	p := DefaultPlan()

	tests := []struct {
		name    string
		members int
		balance string
		want    string // "" means no tier
	}{
		{"below everything", 0, "0", ""},
		{"members short", 4, "200", ""},
		{"balance short", 5, "199.99", ""},
		{"exactly lvl1", 5, "200", DigitLvl1},
		{"lvl2 boundary", 10, "500", DigitLvl2},
		{"rich but small team stays lvl1", 6, "50000", DigitLvl1},
		{"big team low balance stays lvl1", 100, "400", DigitLvl1},
		{"lvl3", 20, "1100", DigitLvl3},
		{"lvl4", 45, "3000", DigitLvl4},
		{"top tier", 80, "10000", DigitLvl5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := p.ClassifyDigit(tt.members, decimal.RequireFromString(tt.balance))
			if tt.want == "" {
				assert.Nil(t, tier)
				return
			}
			require.NotNil(t, tier)
			assert.Equal(t, tt.want, tier.Level)
		})
	}
}

func TestDigitTierByLevel(t *testing.T) {
	p := DefaultPlan()
	tier := p.DigitTierByLevel(DigitLvl1)
	require.NotNil(t, tier)
	assert.Equal(t, 5, tier.DirectMembers)
	assert.True(t, tier.Percent.Equal(decimal.RequireFromString("0.35")))
	assert.Nil(t, p.DigitTierByLevel("Lvl9"))
}
