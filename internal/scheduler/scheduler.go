// Package scheduler runs the recurring distribution jobs. Each job carries
// its own in-process running flag: a trigger that fires while the previous
// run is still executing is skipped, not queued.
package scheduler

import (
	"time"

	"refera/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger

	Snapshot   *SnapshotJob
	Weekly     *WeeklyRecalcJob
	SelfIncome *SelfIncomeJob
}

// New wires the three jobs onto their cron specs in the business timezone.
func New(
	cfg config.SchedulerConfig,
	loc *time.Location,
	log *logrus.Logger,
	snapshot *SnapshotJob,
	weekly *WeeklyRecalcJob,
	selfIncome *SelfIncomeJob,
) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.SnapshotSpec, func() { snapshot.Run(TriggerCron) }); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(cfg.WeeklySpec, func() { weekly.Run(TriggerCron) }); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(cfg.SelfIncomeSpec, func() { selfIncome.Run(TriggerCron) }); err != nil {
		return nil, err
	}
	return &Scheduler{
		cron:       c,
		log:        log,
		Snapshot:   snapshot,
		Weekly:     weekly,
		SelfIncome: selfIncome,
	}, nil
}

func (s *Scheduler) Start() {
	s.log.WithField("jobs", 3).Info("scheduler started")
	s.cron.Start()
}

// Stop halts future triggers; an in-flight run finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}
