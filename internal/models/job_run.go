package models

import "time"

// JobRun records one execution of a scheduled (or manually triggered) batch
// job for operational audit.
type JobRun struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Job        string    `gorm:"size:40;not null;index" json:"job"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`
	Processed  int       `gorm:"not null;default:0" json:"processed"`
	Updated    int       `gorm:"not null;default:0" json:"updated"`
	Errored    int       `gorm:"not null;default:0" json:"errored"`
	Trigger    string    `gorm:"size:16;not null;default:'cron'" json:"trigger"` // cron | manual
}

func (JobRun) TableName() string { return "job_runs" }
