package repository

import (
	"refera/internal/models"

	"gorm.io/gorm"
)

type JobRunRepository struct {
	db *gorm.DB
}

func NewJobRunRepository(db *gorm.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

func (r *JobRunRepository) Create(run *models.JobRun) error {
	return r.db.Create(run).Error
}

// ListRecent returns the latest runs, optionally filtered by job name.
func (r *JobRunRepository) ListRecent(job string, limit int) ([]models.JobRun, error) {
	q := r.db.Order("started_at DESC").Limit(limit)
	if job != "" {
		q = q.Where("job = ?", job)
	}
	var list []models.JobRun
	err := q.Find(&list).Error
	return list, err
}
