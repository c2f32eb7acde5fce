package domain

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// WalletKind is the closed set of wallets a member owns.
type WalletKind string

const (
	WalletNormal     WalletKind = "normal"
	WalletInvestment WalletKind = "investment"
)

// ParseWalletKind maps a request string to a WalletKind. Invalid keys are
// rejected here so no storage code ever sees a free-form wallet name.
func ParseWalletKind(s string) (WalletKind, bool) {
	switch WalletKind(s) {
	case WalletNormal:
		return WalletNormal, true
	case WalletInvestment:
		return WalletInvestment, true
	}
	return "", false
}

// Transaction types.
const (
	TxDeposit          = "deposit"
	TxWithdrawal       = "withdrawal"
	TxTransfer         = "transfer"
	TxTransferToUser   = "transfer_to_user"
	TxTransferFromUser = "transfer_from_user"
	TxReferralBonus    = "referral_bonus"
	TxDailyIncome      = "daily_income"
	TxLevelIncome      = "level_income"
	TxTeamIncome       = "team_income"
	TxCommission       = "commission"
	TxLuckyDrawPrize   = "lucky_draw_prize"
)

// Transaction statuses. Income and transfer transactions are created approved;
// pending/rejected only appear in the deposit/withdrawal approval flows.
const (
	TxStatusPending  = "pending"
	TxStatusApproved = "approved"
	TxStatusRejected = "rejected"
)

// Character levels, assigned from upline depth.
const (
	CharacterA = "A"
	CharacterB = "B"
	CharacterC = "C"
	CharacterD = "D"
	CharacterE = "E"
)

// Digit levels, assigned from direct-team size and wallet thresholds.
const (
	DigitLvl1 = "Lvl1"
	DigitLvl2 = "Lvl2"
	DigitLvl3 = "Lvl3"
	DigitLvl4 = "Lvl4"
	DigitLvl5 = "Lvl5"
)

// System setting keys.
const (
	SettingFirstDepositBonusPercent = "first_deposit_bonus_percent"
	SettingReferralBonusReferrer    = "referral_bonus_referrer"
	SettingReferralBonusReferred    = "referral_bonus_referred"
)
