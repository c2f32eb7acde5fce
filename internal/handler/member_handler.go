package handler

import (
	"net/http"

	"refera/internal/middleware"
	"refera/internal/repository"
	"refera/internal/service"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	members   *repository.MemberRepository
	referrals *repository.ReferralRepository
	levelSvc  *service.LevelService
}

func NewMemberHandler(members *repository.MemberRepository, referrals *repository.ReferralRepository, levelSvc *service.LevelService) *MemberHandler {
	return &MemberHandler{members: members, referrals: referrals, levelSvc: levelSvc}
}

// GetProfile returns the authenticated member's record.
// GET /me/profile
func (h *MemberHandler) GetProfile(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	m, err := h.members.GetByID(memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             m.ID,
		"username":       m.Username,
		"email":          m.Email,
		"referred_by_id": m.ReferredByID,
		"total_earned":   m.TotalEarned,
		"today_earned":   m.TodayEarned,
		"created_at":     m.CreatedAt,
	})
}

// GetReferralCode returns the member's invite code, creating one on first use.
// GET /me/referral-code
func (h *MemberHandler) GetReferralCode(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	rc, err := h.referrals.GetOrCreateCode(memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get referral code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":       rc.Code,
		"is_active":  rc.IsActive,
		"created_at": rc.CreatedAt,
	})
}

// GetReferrals lists the member's direct referrals with their validity for
// digit-level counting.
// GET /me/referrals
func (h *MemberHandler) GetReferrals(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	ts, err := h.levelSvc.TeamStatusFor(memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list referrals"})
		return
	}
	minBalance := h.levelSvc.Plan().ValidMemberMinBalance
	out := make([]gin.H, 0, len(ts.Snapshot))
	for _, d := range ts.Snapshot {
		out = append(out, gin.H{
			"member_id":      d.MemberID,
			"joined_at":      d.JoinedAt,
			"wallet_balance": d.WalletBalance,
			"is_valid":       d.WalletBalance.GreaterThanOrEqual(minBalance),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"referrals":     out,
		"total":         ts.DirectCount,
		"valid_members": ts.ValidMembers,
	})
}
