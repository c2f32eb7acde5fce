package repository

import (
	"errors"

	"refera/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LevelRepository struct {
	db *gorm.DB
}

func NewLevelRepository(db *gorm.DB) *LevelRepository {
	return &LevelRepository{db: db}
}

// WithTx returns a copy bound to an open transaction.
func (r *LevelRepository) WithTx(tx *gorm.DB) *LevelRepository {
	return &LevelRepository{db: tx}
}

// GetOrCreate returns the member's level record, creating an empty one on
// first use.
func (r *LevelRepository) GetOrCreate(memberID uint) (*models.Level, error) {
	var lvl models.Level
	err := r.db.Where("member_id = ?", memberID).First(&lvl).Error
	if err == nil {
		return &lvl, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	lvl = models.Level{MemberID: memberID}
	if err := r.db.Create(&lvl).Error; err != nil {
		return nil, err
	}
	return &lvl, nil
}

// GetWithSnapshot returns the level record with its direct-member snapshot.
func (r *LevelRepository) GetWithSnapshot(memberID uint) (*models.Level, error) {
	var lvl models.Level
	err := r.db.Preload("DirectMembers").Where("member_id = ?", memberID).First(&lvl).Error
	if err != nil {
		return nil, err
	}
	return &lvl, nil
}

// Mutations below are column-scoped by owner: the classifier, the claim path
// and the snapshot job each write a disjoint column set, so none of them can
// revert another's committed write from a stale read.

// UpdateAssignments writes only the classification columns.
func (r *LevelRepository) UpdateAssignments(lvl *models.Level) error {
	return r.db.Model(&models.Level{}).Where("id = ?", lvl.ID).Updates(map[string]interface{}{
		"character_level":           lvl.CharacterLevel,
		"character_last_calculated": lvl.CharacterLastCalculated,
		"digit_level":               lvl.DigitLevel,
		"digit_last_calculated":     lvl.DigitLastCalculated,
	}).Error
}

// UpdateClaimState writes the claim markers, earnings accumulators and the
// daily display amounts, leaving the classification columns untouched.
func (r *LevelRepository) UpdateClaimState(lvl *models.Level) error {
	return r.db.Model(&models.Level{}).Where("id = ?", lvl.ID).Updates(map[string]interface{}{
		"character_total_earned": lvl.CharacterTotalEarned,
		"digit_total_earned":     lvl.DigitTotalEarned,
		"daily_character_income": lvl.DailyCharacterIncome,
		"daily_digit_income":     lvl.DailyDigitIncome,
		"last_claimed":           lvl.LastClaimed,
		"last_team_claimed":      lvl.LastTeamClaimed,
	}).Error
}

// UpdateDailyIncome refreshes the display amounts computed by the snapshot job.
func (r *LevelRepository) UpdateDailyIncome(levelID uint, character, digit decimal.Decimal) error {
	return r.db.Model(&models.Level{}).Where("id = ?", levelID).Updates(map[string]interface{}{
		"daily_character_income": character,
		"daily_digit_income":     digit,
	}).Error
}

// ReplaceDirectMembers swaps the cached direct-member snapshot for a level.
func (r *LevelRepository) ReplaceDirectMembers(levelID uint, snapshot []models.LevelDirectMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("level_id = ?", levelID).Delete(&models.LevelDirectMember{}).Error; err != nil {
			return err
		}
		if len(snapshot) == 0 {
			return nil
		}
		for i := range snapshot {
			snapshot[i].LevelID = levelID
		}
		return tx.Create(&snapshot).Error
	})
}
