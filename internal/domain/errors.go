package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrGraphCycle          = errors.New("referral graph cycle detected")
	ErrAlreadyClaimed      = errors.New("income already claimed today")
	ErrNoIncomeAvailable   = errors.New("no income available to claim")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrTeamCriteriaNotMet  = errors.New("team criteria not met")
)

// TeamCriteriaError reports which digit-tier criteria a team-income claim
// failed against. It unwraps to ErrTeamCriteriaNotMet so callers can match
// with errors.Is and still read the breakdown.
type TeamCriteriaError struct {
	Tier            string
	RequiredMembers int
	ValidMembers    int
	RequiredBalance decimal.Decimal
	WalletBalance   decimal.Decimal
}

func (e *TeamCriteriaError) Error() string {
	return fmt.Sprintf("team criteria not met for %s: valid members %d/%d, wallet balance %s/%s",
		e.Tier, e.ValidMembers, e.RequiredMembers, e.WalletBalance, e.RequiredBalance)
}

func (e *TeamCriteriaError) Unwrap() error { return ErrTeamCriteriaNotMet }
