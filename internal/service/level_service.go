package service

import (
	"time"

	"refera/internal/domain"
	"refera/internal/graph"
	"refera/internal/models"
	"refera/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LevelService classifies members. Character level is a pure function of
// upline depth, digit level of direct-team size and wallet thresholds; both
// are recomputed from current graph state, never patched incrementally.
type LevelService struct {
	plan    domain.CompensationPlan
	members *repository.MemberRepository
	wallets *repository.WalletRepository
	levels  *repository.LevelRepository
	walker  *graph.Walker
	now     func() time.Time
}

func NewLevelService(
	plan domain.CompensationPlan,
	members *repository.MemberRepository,
	wallets *repository.WalletRepository,
	levels *repository.LevelRepository,
	walker *graph.Walker,
) *LevelService {
	return &LevelService{
		plan:    plan,
		members: members,
		wallets: wallets,
		levels:  levels,
		walker:  walker,
		now:     time.Now,
	}
}

func (s *LevelService) Plan() domain.CompensationPlan { return s.plan }

// TeamStatus is the live view of a member's direct team used for digit
// classification and for re-validating team-income claims.
type TeamStatus struct {
	DirectCount  int
	ValidMembers int
	SelfBalance  decimal.Decimal
	Snapshot     []models.LevelDirectMember
}

// TeamStatusFor reads the member's direct referrals and wallet balance.
// A valid member is a direct referral whose normal wallet holds at least the
// plan minimum.
func (s *LevelService) TeamStatusFor(memberID uint) (*TeamStatus, error) {
	directs, err := s.members.ListDirectReferrals(memberID)
	if err != nil {
		return nil, err
	}
	ts := &TeamStatus{DirectCount: len(directs)}
	for _, d := range directs {
		bal, err := s.wallets.Balance(d.ID, domain.WalletNormal)
		if err != nil {
			return nil, err
		}
		if bal.GreaterThanOrEqual(s.plan.ValidMemberMinBalance) {
			ts.ValidMembers++
		}
		ts.Snapshot = append(ts.Snapshot, models.LevelDirectMember{
			MemberID:      d.ID,
			JoinedAt:      d.CreatedAt,
			WalletBalance: bal,
		})
	}
	ts.SelfBalance, err = s.wallets.Balance(memberID, domain.WalletNormal)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// Recalculate recomputes both level assignments for a member and refreshes
// the direct-member snapshot. Returns the saved record and whether either
// assignment changed. A graph cycle fails the member without touching state.
func (s *LevelService) Recalculate(memberID uint) (*models.Level, bool, error) {
	chain, err := s.walker.UplineChain(memberID, s.plan.MaxUplineDepth)
	if err != nil {
		return nil, false, err
	}
	ts, err := s.TeamStatusFor(memberID)
	if err != nil {
		return nil, false, err
	}

	var character *string
	if t := s.plan.CharacterTierAt(len(chain)); t != nil {
		lv := t.Level
		character = &lv
	}
	var digit *string
	if t := s.plan.ClassifyDigit(ts.ValidMembers, ts.SelfBalance); t != nil {
		lv := t.Level
		digit = &lv
	}

	lvl, err := s.levels.GetOrCreate(memberID)
	if err != nil {
		return nil, false, err
	}
	changed := !sameLevel(lvl.CharacterLevel, character) || !sameLevel(lvl.DigitLevel, digit)
	now := s.now()
	lvl.CharacterLevel = character
	lvl.CharacterLastCalculated = now
	lvl.DigitLevel = digit
	lvl.DigitLastCalculated = now
	if err := s.levels.UpdateAssignments(lvl); err != nil {
		return nil, false, err
	}
	if err := s.levels.ReplaceDirectMembers(lvl.ID, ts.Snapshot); err != nil {
		return nil, false, err
	}
	return lvl, changed, nil
}

// RecalculateWithUpline recomputes a member and, when an assignment changed,
// every ancestor in its referral chain; a referral or balance change can
// ripple character levels upward.
func (s *LevelService) RecalculateWithUpline(memberID uint) (bool, error) {
	_, changed, err := s.Recalculate(memberID)
	if err != nil {
		return false, err
	}
	chain, err := s.walker.UplineChain(memberID, s.plan.MaxUplineDepth)
	if err != nil {
		return changed, err
	}
	for _, ancestor := range chain {
		if _, c, err := s.Recalculate(ancestor.ID); err != nil {
			return changed, err
		} else if c {
			changed = true
		}
	}
	return changed, nil
}

// WithTx returns a copy whose repositories run inside tx.
func (s *LevelService) WithTx(tx *gorm.DB) *LevelService {
	cp := *s
	cp.members = s.members.WithTx(tx)
	cp.wallets = s.wallets.WithTx(tx)
	cp.levels = s.levels.WithTx(tx)
	cp.walker = graph.NewWalker(cp.members)
	return &cp
}

func sameLevel(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
