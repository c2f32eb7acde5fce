package handler

import (
	"net/http"
	"strconv"

	"refera/internal/domain"
	"refera/internal/middleware"
	"refera/internal/repository"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	wallets *repository.WalletRepository
}

func NewWalletHandler(wallets *repository.WalletRepository) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// GetBalances returns both wallet balances for the authenticated member.
// GET /me/wallets
func (h *WalletHandler) GetBalances(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	normal, err := h.wallets.Balance(memberID, domain.WalletNormal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	investment, err := h.wallets.Balance(memberID, domain.WalletInvestment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"normal":     normal,
		"investment": investment,
	})
}

// GetTransactions returns the member's ledger entries, newest first.
// GET /me/wallets/transactions
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.wallets.ListTransactions(memberID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list, "total": len(list)})
}
