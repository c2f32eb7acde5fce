package handler

import (
	"errors"
	"net/http"

	"refera/internal/domain"
	"refera/internal/middleware"
	"refera/internal/service"

	"github.com/gin-gonic/gin"
)

type ClaimHandler struct {
	claims *service.ClaimService
}

func NewClaimHandler(claims *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

// ClaimDaily pays out today's character plus digit income.
// POST /me/claims/daily
func (h *ClaimHandler) ClaimDaily(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	result, err := h.claims.ClaimDailyIncome(c.Request.Context(), memberID)
	if err != nil {
		respondClaimError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "income claimed", "claim": result})
}

// ClaimTeam pays out the digit-level team income after re-checking the tier
// criteria against the live downline.
// POST /me/claims/team
func (h *ClaimHandler) ClaimTeam(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	result, err := h.claims.ClaimTeamIncome(c.Request.Context(), memberID)
	if err != nil {
		respondClaimError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "team income claimed", "claim": result})
}

func respondClaimError(c *gin.Context, err error) {
	var criteria *domain.TeamCriteriaError
	switch {
	case errors.Is(err, domain.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": "income already claimed today"})
	case errors.Is(err, domain.ErrNoIncomeAvailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no income available to claim"})
	case errors.As(err, &criteria):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": criteria.Error(),
			"criteria": gin.H{
				"tier":             criteria.Tier,
				"required_members": criteria.RequiredMembers,
				"valid_members":    criteria.ValidMembers,
				"required_balance": criteria.RequiredBalance,
				"wallet_balance":   criteria.WalletBalance,
			},
		})
	case errors.Is(err, domain.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "claim failed"})
	}
}
