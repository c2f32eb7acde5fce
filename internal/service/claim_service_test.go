package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"refera/internal/domain"
	"refera/internal/lock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClaimService(e *env) *ClaimService {
	return NewClaimService(e.db, e.members, e.wallets, e.levels, e.levelSvc, e.income, lock.NewLocalLocker(), nil, time.UTC)
}

// qualifiedSponsor builds a root member with five funded referrals and a 1000
// balance, so they hold digit level Lvl1.
func qualifiedSponsor(t *testing.T, e *env) uint {
	t.Helper()
	sponsor := e.createMember(t, "sponsor", nil)
	for i := 0; i < 5; i++ {
		r := e.createMember(t, fmt.Sprintf("ref%d", i), &sponsor.ID)
		e.fund(t, r.ID, "50")
	}
	e.fund(t, sponsor.ID, "1000")
	_, _, err := e.levelSvc.Recalculate(sponsor.ID)
	require.NoError(t, err)
	return sponsor.ID
}

func TestClaimDailyIncomeCreditsWallet(t *testing.T) {
	e := newEnv(t)
	claims := newClaimService(e)
	sponsorID := qualifiedSponsor(t, e)

	result, err := claims.ClaimDailyIncome(context.Background(), sponsorID)
	require.NoError(t, err)
	// Lvl1 pays 0.35% of 1000
	assert.True(t, result.Digit.Equal(decimal.RequireFromString("3.5")), "got %s", result.Digit)
	assert.True(t, result.Total.Equal(decimal.RequireFromString("3.5")))
	assert.True(t, result.NewBalance.Equal(decimal.RequireFromString("1003.5")))
	assert.NotEmpty(t, result.Ref)

	bal, err := e.wallets.Balance(sponsorID, domain.WalletNormal)
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("1003.5")))

	lvl, err := e.levels.GetOrCreate(sponsorID)
	require.NoError(t, err)
	require.NotNil(t, lvl.LastClaimed)
	assert.True(t, lvl.DigitTotalEarned.Equal(decimal.RequireFromString("3.5")))
}

func TestClaimDailyIncomeOncePerDay(t *testing.T) {
	e := newEnv(t)
	claims := newClaimService(e)
	sponsorID := qualifiedSponsor(t, e)

	_, err := claims.ClaimDailyIncome(context.Background(), sponsorID)
	require.NoError(t, err)

	_, err = claims.ClaimDailyIncome(context.Background(), sponsorID)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)

	// balance untouched by the rejected claim
	bal, err := e.wallets.Balance(sponsorID, domain.WalletNormal)
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("1003.5")))
}

func TestClaimDailyIncomeResetsNextDay(t *testing.T) {
	e := newEnv(t)
	claims := newClaimService(e)
	sponsorID := qualifiedSponsor(t, e)

	day1 := time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC)
	claims.now = func() time.Time { return day1 }
	_, err := claims.ClaimDailyIncome(context.Background(), sponsorID)
	require.NoError(t, err)

	// ten minutes later, but a new calendar day
	claims.now = func() time.Time { return day1.Add(10 * time.Minute) }
	_, err = claims.ClaimDailyIncome(context.Background(), sponsorID)
	require.NoError(t, err)
}

func TestClaimMarkerSurvivesStaleReclassification(t *testing.T) {
	e := newEnv(t)
	claims := newClaimService(e)
	sponsorID := qualifiedSponsor(t, e)

	// a batch reclassification reads the level row,
	stale, err := e.levels.GetOrCreate(sponsorID)
	require.NoError(t, err)

	// a claim commits while the batch still holds its stale copy,
	first, err := claims.ClaimDailyIncome(context.Background(), sponsorID)
	require.NoError(t, err)

	// and the batch writes its result from the stale read
	require.NoError(t, e.levels.UpdateAssignments(stale))

	lvl, err := e.levels.GetOrCreate(sponsorID)
	require.NoError(t, err)
	require.NotNil(t, lvl.LastClaimed, "claim marker reverted by the reclassification write")
	assert.True(t, lvl.DigitTotalEarned.Equal(first.Total))

	_, err = claims.ClaimDailyIncome(context.Background(), sponsorID)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
}

func TestClaimDailyIncomeNoneAvailable(t *testing.T) {
	e := newEnv(t)
	claims := newClaimService(e)
	// a root with no referrer, no team, no balance earns nothing
	m := e.createMember(t, "loner", nil)
	_, _, err := e.levelSvc.Recalculate(m.ID)
	require.NoError(t, err)

	_, err = claims.ClaimDailyIncome(context.Background(), m.ID)
	assert.ErrorIs(t, err, domain.ErrNoIncomeAvailable)
}

func TestClaimDailyIncomeUnknownMember(t *testing.T) {
	e := newEnv(t)
	claims := newClaimService(e)

	_, err := claims.ClaimDailyIncome(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestClaimTeamIncomePaysAssignedTier(t *testing.T) {
	e := newEnv(t)
	claims := newClaimService(e)
	sponsorID := qualifiedSponsor(t, e)

	result, err := claims.ClaimTeamIncome(context.Background(), sponsorID)
	require.NoError(t, err)
	// Lvl1 pays 0.35% of the sponsor's own 1000
	assert.True(t, result.Total.Equal(decimal.RequireFromString("3.5")), "got %s", result.Total)

	_, err = claims.ClaimTeamIncome(context.Background(), sponsorID)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
}

func TestClaimTeamIncomeWithoutDigitLevel(t *testing.T) {
	e := newEnv(t)
	claims := newClaimService(e)
	m := e.createMember(t, "loner", nil)

	_, err := claims.ClaimTeamIncome(context.Background(), m.ID)
	assert.ErrorIs(t, err, domain.ErrNoIncomeAvailable)
}

func TestClaimTeamIncomeRevalidatesCriteria(t *testing.T) {
	e := newEnv(t)
	claims := newClaimService(e)
	sponsorID := qualifiedSponsor(t, e)

	// a referral spends below the valid-member minimum after classification
	ref0, err := e.members.GetByUsername("ref0")
	require.NoError(t, err)
	_, err = e.wallets.Debit(ref0.ID, domain.WalletNormal, decimal.NewFromInt(10), domain.TxWithdrawal, "spend")
	require.NoError(t, err)

	_, err = claims.ClaimTeamIncome(context.Background(), sponsorID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTeamCriteriaNotMet)

	var criteria *domain.TeamCriteriaError
	require.ErrorAs(t, err, &criteria)
	assert.Equal(t, domain.DigitLvl1, criteria.Tier)
	assert.Equal(t, 5, criteria.RequiredMembers)
	assert.Equal(t, 4, criteria.ValidMembers)

	// the failed claim left the ledger untouched
	bal, err := e.wallets.Balance(sponsorID, domain.WalletNormal)
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.NewFromInt(1000)))
}
