package handler

import (
	"errors"
	"net/http"

	"refera/internal/domain"
	"refera/internal/middleware"
	"refera/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type TransferHandler struct {
	transfers *service.TransferService
}

func NewTransferHandler(transfers *service.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type walletTransferRequest struct {
	From   string          `json:"from" binding:"required"`
	To     string          `json:"to" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// TransferWallets moves funds between the member's own wallets.
// POST /me/transfers/wallet
func (h *TransferHandler) TransferWallets(c *gin.Context) {
	var req walletTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, ok := domain.ParseWalletKind(req.From)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown wallet: " + req.From})
		return
	}
	to, ok := domain.ParseWalletKind(req.To)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown wallet: " + req.To})
		return
	}
	memberID := middleware.GetMemberID(c)
	result, err := h.transfers.TransferBetweenWallets(c.Request.Context(), memberID, from, to, req.Amount)
	if err != nil {
		respondTransferError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transfer completed", "transfer": result})
}

type memberTransferRequest struct {
	ToMemberID uint            `json:"to_member_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// TransferMember sends funds from the member's normal wallet to another
// member's normal wallet.
// POST /me/transfers/member
func (h *TransferHandler) TransferMember(c *gin.Context) {
	var req memberTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	memberID := middleware.GetMemberID(c)
	result, err := h.transfers.TransferToMember(c.Request.Context(), memberID, req.ToMemberID, req.Amount)
	if err != nil {
		respondTransferError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transfer completed", "transfer": result})
}

func respondTransferError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSameWallet),
		errors.Is(err, service.ErrSelfTransfer),
		errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
	case errors.Is(err, domain.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transfer failed"})
	}
}
