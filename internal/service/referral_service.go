package service

import (
	"fmt"

	"refera/internal/domain"
	"refera/internal/models"
	"refera/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReferralService links new signups into the referral tree and credits the
// configurable signup bonuses.
type ReferralService struct {
	referrals *repository.ReferralRepository
	members   *repository.MemberRepository
	wallets   *repository.WalletRepository
	settings  *repository.SettingRepository
	levelSvc  *LevelService
	log       *logrus.Logger
}

func NewReferralService(
	referrals *repository.ReferralRepository,
	members *repository.MemberRepository,
	wallets *repository.WalletRepository,
	settings *repository.SettingRepository,
	levelSvc *LevelService,
	log *logrus.Logger,
) *ReferralService {
	return &ReferralService{
		referrals: referrals,
		members:   members,
		wallets:   wallets,
		settings:  settings,
		levelSvc:  levelSvc,
		log:       log,
	}
}

// ProcessReferralCode sets the new member's upline pointer from a submitted
// invite code, credits the signup bonuses, and refreshes both sides' level
// assignments. Invalid or self-referential codes are ignored silently; a
// bad code must not fail the signup.
func (s *ReferralService) ProcessReferralCode(code string, newMember *models.Member) {
	if code == "" {
		return
	}
	rc, err := s.referrals.GetByCode(code)
	if err != nil || rc == nil || rc.MemberID == newMember.ID {
		return
	}

	newMember.ReferredByID = &rc.MemberID
	if err := s.members.Update(newMember); err != nil {
		s.log.WithError(err).WithField("member_id", newMember.ID).Error("referral: failed to set upline pointer")
		return
	}

	referrerBonus := s.settings.GetDecimal(domain.SettingReferralBonusReferrer, decimal.NewFromInt(10))
	referredBonus := s.settings.GetDecimal(domain.SettingReferralBonusReferred, decimal.NewFromInt(5))

	if referrerBonus.IsPositive() {
		_, err := s.wallets.Credit(rc.MemberID, domain.WalletNormal, referrerBonus, domain.TxReferralBonus,
			fmt.Sprintf("referral bonus for member %d", newMember.ID))
		if err != nil {
			s.log.WithError(err).WithField("member_id", rc.MemberID).Error("referral: failed to credit referrer")
		}
	}
	if referredBonus.IsPositive() {
		_, err := s.wallets.Credit(newMember.ID, domain.WalletNormal, referredBonus, domain.TxReferralBonus,
			fmt.Sprintf("signup bonus from member %d", rc.MemberID))
		if err != nil {
			s.log.WithError(err).WithField("member_id", newMember.ID).Error("referral: failed to credit referred")
		}
	}

	// The new downline member can change the referrer's digit level and the
	// character levels along the chain.
	if _, err := s.levelSvc.RecalculateWithUpline(newMember.ID); err != nil {
		s.log.WithError(err).WithField("member_id", newMember.ID).Error("referral: level recalculation failed")
	}
}
