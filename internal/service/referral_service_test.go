package service

import (
	"io"
	"testing"

	"refera/internal/domain"
	"refera/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReferralService(e *env) *ReferralService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewReferralService(
		repository.NewReferralRepository(e.db),
		e.members, e.wallets,
		repository.NewSettingRepository(e.db),
		e.levelSvc, log,
	)
}

func TestProcessReferralCodeLinksAndPaysBonuses(t *testing.T) {
	e := newEnv(t)
	svc := newReferralService(e)
	referrals := repository.NewReferralRepository(e.db)

	sponsor := e.createMember(t, "sponsor", nil)
	rc, err := referrals.GetOrCreateCode(sponsor.ID)
	require.NoError(t, err)

	joiner := e.createMember(t, "joiner", nil)
	svc.ProcessReferralCode(rc.Code, joiner)

	got, err := e.members.GetByID(joiner.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReferredByID)
	assert.Equal(t, sponsor.ID, *got.ReferredByID)

	// default bonuses: 10 for the referrer, 5 for the joiner
	sponsorBal, _ := e.wallets.Balance(sponsor.ID, domain.WalletNormal)
	joinerBal, _ := e.wallets.Balance(joiner.ID, domain.WalletNormal)
	assert.True(t, sponsorBal.Equal(decimal.NewFromInt(10)), "got %s", sponsorBal)
	assert.True(t, joinerBal.Equal(decimal.NewFromInt(5)), "got %s", joinerBal)

	// the joiner got classified under the sponsor
	lvl, err := e.levels.GetOrCreate(joiner.ID)
	require.NoError(t, err)
	require.NotNil(t, lvl.CharacterLevel)
	assert.Equal(t, domain.CharacterB, *lvl.CharacterLevel)
}

func TestProcessReferralCodeBonusesFromSettings(t *testing.T) {
	e := newEnv(t)
	svc := newReferralService(e)
	referrals := repository.NewReferralRepository(e.db)
	settings := repository.NewSettingRepository(e.db)
	require.NoError(t, settings.Set(domain.SettingReferralBonusReferrer, "25"))
	require.NoError(t, settings.Set(domain.SettingReferralBonusReferred, "0"))

	sponsor := e.createMember(t, "sponsor", nil)
	rc, err := referrals.GetOrCreateCode(sponsor.ID)
	require.NoError(t, err)

	joiner := e.createMember(t, "joiner", nil)
	svc.ProcessReferralCode(rc.Code, joiner)

	sponsorBal, _ := e.wallets.Balance(sponsor.ID, domain.WalletNormal)
	joinerBal, _ := e.wallets.Balance(joiner.ID, domain.WalletNormal)
	assert.True(t, sponsorBal.Equal(decimal.NewFromInt(25)))
	assert.True(t, joinerBal.IsZero())
}

func TestProcessReferralCodeIgnoresInvalidCode(t *testing.T) {
	e := newEnv(t)
	svc := newReferralService(e)

	joiner := e.createMember(t, "joiner", nil)
	svc.ProcessReferralCode("nope1234", joiner)

	got, err := e.members.GetByID(joiner.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ReferredByID)
}

func TestProcessReferralCodeIgnoresOwnCode(t *testing.T) {
	e := newEnv(t)
	svc := newReferralService(e)
	referrals := repository.NewReferralRepository(e.db)

	m := e.createMember(t, "selfish", nil)
	rc, err := referrals.GetOrCreateCode(m.ID)
	require.NoError(t, err)

	svc.ProcessReferralCode(rc.Code, m)

	got, err := e.members.GetByID(m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ReferredByID)
	bal, _ := e.wallets.Balance(m.ID, domain.WalletNormal)
	assert.True(t, bal.IsZero())
}
