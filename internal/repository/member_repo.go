package repository

import (
	"errors"

	"refera/internal/domain"
	"refera/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// WithTx returns a copy bound to an open transaction.
func (r *MemberRepository) WithTx(tx *gorm.DB) *MemberRepository {
	return &MemberRepository{db: tx}
}

func (r *MemberRepository) Create(m *models.Member) error {
	return r.db.Create(m).Error
}

func (r *MemberRepository) GetByID(id uint) (*models.Member, error) {
	var m models.Member
	if err := r.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) GetByEmail(email string) (*models.Member, error) {
	var m models.Member
	if err := r.db.Where("email = ?", email).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) GetByUsername(username string) (*models.Member, error) {
	var m models.Member
	if err := r.db.Where("username = ?", username).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) Update(m *models.Member) error {
	return r.db.Save(m).Error
}

// ResetTodayEarned zeroes the daily earnings counter without rewriting the
// rest of the row.
func (r *MemberRepository) ResetTodayEarned(id uint) error {
	return r.db.Model(&models.Member{}).Where("id = ?", id).
		Update("today_earned", decimal.Zero).Error
}

// ListDirectReferrals returns the members whose upline pointer is memberID,
// oldest first.
func (r *MemberRepository) ListDirectReferrals(memberID uint) ([]models.Member, error) {
	var list []models.Member
	err := r.db.Where("referred_by_id = ?", memberID).Order("created_at ASC").Find(&list).Error
	return list, err
}

// ListByReferrerIDs returns all members referred by any of the given IDs.
// Used by the downline walker to expand one level into the next.
func (r *MemberRepository) ListByReferrerIDs(ids []uint) ([]models.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.Member
	err := r.db.Where("referred_by_id IN ?", ids).Find(&list).Error
	return list, err
}

// ListActiveIDs returns IDs of all active members, for batch jobs.
func (r *MemberRepository) ListActiveIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Member{}).Where("is_active = ?", true).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// ListCreditableIDs returns IDs of active, non-blocked members, the
// population eligible for scheduled wallet credits.
func (r *MemberRepository) ListCreditableIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Member{}).
		Where("is_active = ? AND is_blocked = ?", true, false).
		Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}
