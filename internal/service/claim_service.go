package service

import (
	"context"
	"fmt"
	"time"

	"refera/internal/domain"
	"refera/internal/event"
	"refera/internal/lock"
	"refera/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClaimService handles the once-per-day income claims. Each claim holds the
// member's lock across its whole check-then-credit sequence and runs the
// mutation in one DB transaction, so two concurrent claims cannot both pass
// the "already claimed today" gate.
type ClaimService struct {
	db       *gorm.DB
	members  *repository.MemberRepository
	wallets  *repository.WalletRepository
	levels   *repository.LevelRepository
	levelSvc *LevelService
	income   *IncomeService
	locker   lock.MemberLocker
	events   *event.Publisher
	loc      *time.Location
	now      func() time.Time
}

func NewClaimService(
	db *gorm.DB,
	members *repository.MemberRepository,
	wallets *repository.WalletRepository,
	levels *repository.LevelRepository,
	levelSvc *LevelService,
	income *IncomeService,
	locker lock.MemberLocker,
	events *event.Publisher,
	loc *time.Location,
) *ClaimService {
	return &ClaimService{
		db:       db,
		members:  members,
		wallets:  wallets,
		levels:   levels,
		levelSvc: levelSvc,
		income:   income,
		locker:   locker,
		events:   events,
		loc:      loc,
		now:      time.Now,
	}
}

// ClaimResult is the success payload of a claim.
type ClaimResult struct {
	Character  decimal.Decimal `json:"character_income"`
	Digit      decimal.Decimal `json:"digit_income"`
	Total      decimal.Decimal `json:"total"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Ref        string          `json:"ref"`
}

// ClaimDailyIncome credits the member's character+digit income for today as a
// single level_income transaction on the normal wallet. Fails with
// ErrAlreadyClaimed on a same-calendar-day repeat and ErrNoIncomeAvailable
// when the computed total is not positive; state is untouched on any failure.
func (s *ClaimService) ClaimDailyIncome(ctx context.Context, memberID uint) (*ClaimResult, error) {
	unlock, err := s.locker.Lock(ctx, memberID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	member, err := s.members.GetByID(memberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var result *ClaimResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		levels := s.levels.WithTx(tx)
		lvl, err := levels.GetOrCreate(memberID)
		if err != nil {
			return err
		}
		if lvl.LastClaimed != nil && sameCalendarDay(*lvl.LastClaimed, now, s.loc) {
			return domain.ErrAlreadyClaimed
		}
		inc, err := s.income.WithTx(tx).DailyIncome(member, lvl)
		if err != nil {
			return err
		}
		total := inc.Total()
		if !total.IsPositive() {
			return domain.ErrNoIncomeAvailable
		}
		desc := fmt.Sprintf("daily income claim: character %s + digit %s", inc.Character, inc.Digit)
		txn, err := s.wallets.WithTx(tx).Credit(memberID, domain.WalletNormal, total, domain.TxLevelIncome, desc)
		if err != nil {
			return err
		}
		lvl.CharacterTotalEarned = lvl.CharacterTotalEarned.Add(inc.Character)
		lvl.DigitTotalEarned = lvl.DigitTotalEarned.Add(inc.Digit)
		lvl.DailyCharacterIncome = inc.Character
		lvl.DailyDigitIncome = inc.Digit
		claimedAt := now
		lvl.LastClaimed = &claimedAt
		if err := levels.UpdateClaimState(lvl); err != nil {
			return err
		}
		newBal, err := s.wallets.WithTx(tx).Balance(memberID, domain.WalletNormal)
		if err != nil {
			return err
		}
		result = &ClaimResult{
			Character:  inc.Character,
			Digit:      inc.Digit,
			Total:      total,
			NewBalance: newBal,
			Ref:        txn.Ref,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishClaimed(memberID, "daily", result)
	return result, nil
}

// ClaimTeamIncome credits the digit-level income as a team_income
// transaction, but only after re-validating the assigned tier's criteria
// against the live downline. A member whose team shrank since the last
// classification run gets ErrTeamCriteriaNotMet with the gap, not a payout.
func (s *ClaimService) ClaimTeamIncome(ctx context.Context, memberID uint) (*ClaimResult, error) {
	unlock, err := s.locker.Lock(ctx, memberID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.members.GetByID(memberID); err != nil {
		return nil, err
	}

	now := s.now()
	var result *ClaimResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		levels := s.levels.WithTx(tx)
		lvl, err := levels.GetOrCreate(memberID)
		if err != nil {
			return err
		}
		if lvl.DigitLevel == nil {
			return domain.ErrNoIncomeAvailable
		}
		if lvl.LastTeamClaimed != nil && sameCalendarDay(*lvl.LastTeamClaimed, now, s.loc) {
			return domain.ErrAlreadyClaimed
		}
		tier := s.levelSvc.Plan().DigitTierByLevel(*lvl.DigitLevel)
		if tier == nil {
			return domain.ErrNoIncomeAvailable
		}
		ts, err := s.levelSvc.WithTx(tx).TeamStatusFor(memberID)
		if err != nil {
			return err
		}
		if ts.ValidMembers < tier.DirectMembers || ts.SelfBalance.LessThan(tier.SelfWalletMin) {
			return &domain.TeamCriteriaError{
				Tier:            tier.Level,
				RequiredMembers: tier.DirectMembers,
				ValidMembers:    ts.ValidMembers,
				RequiredBalance: tier.SelfWalletMin,
				WalletBalance:   ts.SelfBalance,
			}
		}
		amount := ts.SelfBalance.Mul(tier.Percent).Div(hundred)
		if !amount.IsPositive() {
			return domain.ErrNoIncomeAvailable
		}
		desc := fmt.Sprintf("team income claim for %s", tier.Level)
		txn, err := s.wallets.WithTx(tx).Credit(memberID, domain.WalletNormal, amount, domain.TxTeamIncome, desc)
		if err != nil {
			return err
		}
		lvl.DigitTotalEarned = lvl.DigitTotalEarned.Add(amount)
		claimedAt := now
		lvl.LastTeamClaimed = &claimedAt
		if err := levels.UpdateClaimState(lvl); err != nil {
			return err
		}
		newBal, err := s.wallets.WithTx(tx).Balance(memberID, domain.WalletNormal)
		if err != nil {
			return err
		}
		result = &ClaimResult{Digit: amount, Total: amount, NewBalance: newBal, Ref: txn.Ref}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishClaimed(memberID, "team", result)
	return result, nil
}

// publishClaimed pushes the claim onto the event bus. Best effort: the claim
// is already committed, so a publish failure is dropped.
func (s *ClaimService) publishClaimed(memberID uint, kind string, r *ClaimResult) {
	_ = s.events.Publish(event.TopicIncomeClaimed, map[string]any{
		"member_id": memberID,
		"kind":      kind,
		"total":     r.Total,
		"ref":       r.Ref,
	})
}

// sameCalendarDay compares dates in the business timezone; the claim window
// resets at local midnight, not on a rolling 24h clock.
func sameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
