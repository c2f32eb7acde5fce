package service

import (
	"fmt"
	"testing"

	"refera/internal/domain"
	"refera/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculateCharacterLevelByUplineDepth(t *testing.T) {
	e := newEnv(t)

	// chain of 7: m[0] is the root, m[6] is six levels deep
	var chain []*models.Member
	var parent *uint
	for i := 0; i < 7; i++ {
		m := e.createMember(t, fmt.Sprintf("member%d", i), parent)
		chain = append(chain, m)
		id := m.ID
		parent = &id
	}

	want := []string{"A", "B", "C", "D", "E"}
	for i, level := range want {
		lvl, _, err := e.levelSvc.Recalculate(chain[i].ID)
		require.NoError(t, err)
		require.NotNil(t, lvl.CharacterLevel, "depth %d", i)
		assert.Equal(t, level, *lvl.CharacterLevel, "depth %d", i)
	}

	// deeper than the table earns no character level
	for i := 5; i < 7; i++ {
		lvl, _, err := e.levelSvc.Recalculate(chain[i].ID)
		require.NoError(t, err)
		assert.Nil(t, lvl.CharacterLevel, "depth %d", i)
	}
}

func TestRecalculateDigitLevelBoundaries(t *testing.T) {
	e := newEnv(t)
	sponsor := e.createMember(t, "sponsor", nil)

	// four funded referrals: one short of the Lvl1 team requirement
	for i := 0; i < 4; i++ {
		r := e.createMember(t, fmt.Sprintf("ref%d", i), &sponsor.ID)
		e.fund(t, r.ID, "50")
	}
	e.fund(t, sponsor.ID, "200")

	lvl, _, err := e.levelSvc.Recalculate(sponsor.ID)
	require.NoError(t, err)
	assert.Nil(t, lvl.DigitLevel)

	// fifth valid member crosses the boundary
	r := e.createMember(t, "ref4", &sponsor.ID)
	e.fund(t, r.ID, "50")

	lvl, changed, err := e.levelSvc.Recalculate(sponsor.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, lvl.DigitLevel)
	assert.Equal(t, domain.DigitLvl1, *lvl.DigitLevel)
}

func TestRecalculateIgnoresUnderfundedReferrals(t *testing.T) {
	e := newEnv(t)
	sponsor := e.createMember(t, "sponsor", nil)
	e.fund(t, sponsor.ID, "200")

	// five referrals, but one holds less than the valid-member minimum
	for i := 0; i < 4; i++ {
		r := e.createMember(t, fmt.Sprintf("ref%d", i), &sponsor.ID)
		e.fund(t, r.ID, "50")
	}
	poor := e.createMember(t, "poor", &sponsor.ID)
	e.fund(t, poor.ID, "49.99")

	lvl, _, err := e.levelSvc.Recalculate(sponsor.ID)
	require.NoError(t, err)
	assert.Nil(t, lvl.DigitLevel)

	ts, err := e.levelSvc.TeamStatusFor(sponsor.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, ts.DirectCount)
	assert.Equal(t, 4, ts.ValidMembers)
}

func TestRecalculateDigitLevelNeedsOwnBalance(t *testing.T) {
	e := newEnv(t)
	sponsor := e.createMember(t, "sponsor", nil)
	for i := 0; i < 5; i++ {
		r := e.createMember(t, fmt.Sprintf("ref%d", i), &sponsor.ID)
		e.fund(t, r.ID, "50")
	}
	e.fund(t, sponsor.ID, "199.99")

	lvl, _, err := e.levelSvc.Recalculate(sponsor.ID)
	require.NoError(t, err)
	assert.Nil(t, lvl.DigitLevel)
}

func TestRecalculatePicksHighestQualifiedTier(t *testing.T) {
	e := newEnv(t)
	sponsor := e.createMember(t, "sponsor", nil)
	for i := 0; i < 12; i++ {
		r := e.createMember(t, fmt.Sprintf("ref%d", i), &sponsor.ID)
		e.fund(t, r.ID, "50")
	}
	e.fund(t, sponsor.ID, "600")

	lvl, _, err := e.levelSvc.Recalculate(sponsor.ID)
	require.NoError(t, err)
	require.NotNil(t, lvl.DigitLevel)
	assert.Equal(t, domain.DigitLvl2, *lvl.DigitLevel)
}

func TestRecalculateSavesDirectMemberSnapshot(t *testing.T) {
	e := newEnv(t)
	sponsor := e.createMember(t, "sponsor", nil)
	r := e.createMember(t, "ref0", &sponsor.ID)
	e.fund(t, r.ID, "75")

	_, _, err := e.levelSvc.Recalculate(sponsor.ID)
	require.NoError(t, err)

	lvl, err := e.levels.GetWithSnapshot(sponsor.ID)
	require.NoError(t, err)
	require.Len(t, lvl.DirectMembers, 1)
	assert.Equal(t, r.ID, lvl.DirectMembers[0].MemberID)
	assert.True(t, lvl.DirectMembers[0].WalletBalance.Equal(decimal.NewFromInt(75)))
}

func TestRecalculateReportsUnchanged(t *testing.T) {
	e := newEnv(t)
	m := e.createMember(t, "root", nil)

	_, changed, err := e.levelSvc.Recalculate(m.ID)
	require.NoError(t, err)
	assert.True(t, changed) // nil -> A

	_, changed, err = e.levelSvc.Recalculate(m.ID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRecalculateFailsOnGraphCycle(t *testing.T) {
	e := newEnv(t)
	a := e.createMember(t, "a", nil)
	b := e.createMember(t, "b", &a.ID)
	a.ReferredByID = &b.ID
	require.NoError(t, e.members.Update(a))

	_, _, err := e.levelSvc.Recalculate(a.ID)
	assert.ErrorIs(t, err, domain.ErrGraphCycle)
}

func TestRecalculateWithUplineRipples(t *testing.T) {
	e := newEnv(t)
	sponsor := e.createMember(t, "sponsor", nil)
	e.fund(t, sponsor.ID, "200")
	for i := 0; i < 4; i++ {
		r := e.createMember(t, fmt.Sprintf("ref%d", i), &sponsor.ID)
		e.fund(t, r.ID, "50")
	}
	_, _, err := e.levelSvc.Recalculate(sponsor.ID)
	require.NoError(t, err)

	// the fifth funded referral qualifies the sponsor when the new member's
	// recalculation ripples up the chain
	fifth := e.createMember(t, "ref4", &sponsor.ID)
	e.fund(t, fifth.ID, "50")
	changed, err := e.levelSvc.RecalculateWithUpline(fifth.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	lvl, err := e.levels.GetOrCreate(sponsor.ID)
	require.NoError(t, err)
	require.NotNil(t, lvl.DigitLevel)
	assert.Equal(t, domain.DigitLvl1, *lvl.DigitLevel)
}
