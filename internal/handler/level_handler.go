package handler

import (
	"net/http"

	"refera/internal/middleware"
	"refera/internal/repository"
	"refera/internal/service"

	"github.com/gin-gonic/gin"
)

type LevelHandler struct {
	members  *repository.MemberRepository
	levels   *repository.LevelRepository
	levelSvc *service.LevelService
	income   *service.IncomeService
}

func NewLevelHandler(members *repository.MemberRepository, levels *repository.LevelRepository, levelSvc *service.LevelService, income *service.IncomeService) *LevelHandler {
	return &LevelHandler{members: members, levels: levels, levelSvc: levelSvc, income: income}
}

// GetLevel returns the member's current character and digit assignments along
// with lifetime earnings per scheme.
// GET /me/level
func (h *LevelHandler) GetLevel(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	lvl, err := h.levels.GetOrCreate(memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load level"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"character_level":         lvl.CharacterLevel,
		"character_total_earned":  lvl.CharacterTotalEarned,
		"digit_level":             lvl.DigitLevel,
		"digit_total_earned":      lvl.DigitTotalEarned,
		"daily_character_income":  lvl.DailyCharacterIncome,
		"daily_digit_income":      lvl.DailyDigitIncome,
		"last_claimed":            lvl.LastClaimed,
		"last_team_claimed":       lvl.LastTeamClaimed,
		"character_last_computed": lvl.CharacterLastCalculated,
		"digit_last_computed":     lvl.DigitLastCalculated,
	})
}

// GetIncomePreview recomputes the member's levels and shows what a claim
// would pay right now, without moving any money.
// GET /me/income/preview
func (h *LevelHandler) GetIncomePreview(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	member, err := h.members.GetByID(memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	lvl, _, err := h.levelSvc.Recalculate(memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute income"})
		return
	}
	inc, err := h.income.DailyIncome(member, lvl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute income"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"character_level":  lvl.CharacterLevel,
		"digit_level":      lvl.DigitLevel,
		"character_income": inc.Character,
		"digit_income":     inc.Digit,
		"total":            inc.Total(),
	})
}
