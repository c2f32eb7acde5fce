package service

import (
	"errors"
	"fmt"

	"refera/config"
	"refera/internal/auth"
	"refera/internal/domain"
	"refera/internal/models"
	"refera/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
)

type AuthService struct {
	cfg         *config.Config
	members     *repository.MemberRepository
	wallets     *repository.WalletRepository
	referralSvc *ReferralService
}

func NewAuthService(cfg *config.Config, members *repository.MemberRepository, wallets *repository.WalletRepository, referralSvc *ReferralService) *AuthService {
	return &AuthService{cfg: cfg, members: members, wallets: wallets, referralSvc: referralSvc}
}

// Register creates a member with both wallets and, when a referral code was
// submitted, links the upline pointer and credits the signup bonuses.
func (s *AuthService) Register(email, username, password, referralCode string) (*models.Member, string, string, error) {
	_, err := s.members.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	_, err = s.members.GetByUsername(username)
	if err == nil {
		return nil, "", "", ErrUsernameExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	m := &models.Member{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
		IsActive:     true,
	}
	if err := s.members.Create(m); err != nil {
		return nil, "", "", err
	}
	if _, err := s.wallets.GetOrCreate(m.ID, domain.WalletNormal); err != nil {
		return nil, "", "", err
	}
	if _, err := s.wallets.GetOrCreate(m.ID, domain.WalletInvestment); err != nil {
		return nil, "", "", err
	}
	s.referralSvc.ProcessReferralCode(referralCode, m)

	access, err := auth.GenerateAccessToken(&s.cfg.JWT, m.ID, m.Email, m.Role)
	if err != nil {
		return m, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, m.ID)
	if err != nil {
		return m, access, "", err
	}
	return m, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.Member, string, string, error) {
	m, err := s.members.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, m.ID, m.Email, m.Role)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, m.ID)
	if err != nil {
		return nil, "", "", err
	}
	return m, access, refresh, nil
}

func (s *AuthService) RefreshToken(refreshToken string) (access, refresh string, err error) {
	token, err := jwt.ParseWithClaims(refreshToken, &jwt.RegisteredClaims{}, func(_ *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.RefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", auth.ErrInvalidToken
	}
	claims := token.Claims.(*jwt.RegisteredClaims)
	var memberID uint
	fmt.Sscanf(claims.Subject, "%d", &memberID)
	m, err := s.members.GetByID(memberID)
	if err != nil {
		return "", "", err
	}
	access, err = auth.GenerateAccessToken(&s.cfg.JWT, m.ID, m.Email, m.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err = auth.GenerateRefreshToken(&s.cfg.JWT, m.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
