package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"refera/internal/domain"
	"refera/internal/event"
	"refera/internal/lock"
	"refera/internal/models"
	"refera/internal/repository"
	"refera/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Job names and trigger sources recorded on every run.
const (
	JobDailySnapshot = "daily_snapshot"
	JobWeeklyRecalc  = "weekly_recalc"
	JobSelfIncome    = "self_income"

	TriggerCron   = "cron"
	TriggerManual = "manual"
)

// RunSummary is the outcome of one batch run. A member-level failure is
// counted, never propagated; Skipped marks a trigger that found the previous
// run still going.
type RunSummary struct {
	Job       string        `json:"job"`
	Trigger   string        `json:"trigger"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Processed int           `json:"processed"`
	Updated   int           `json:"updated"`
	Errored   int           `json:"errored"`
	Skipped   bool          `json:"skipped"`
}

// finishRun logs the summary, persists it, and publishes it when an event
// bus is configured.
func finishRun(log *logrus.Logger, runs *repository.JobRunRepository, events *event.Publisher, s RunSummary) {
	log.WithFields(logrus.Fields{
		"job":       s.Job,
		"trigger":   s.Trigger,
		"processed": s.Processed,
		"updated":   s.Updated,
		"errored":   s.Errored,
		"duration":  s.Duration.String(),
	}).Info("job run finished")
	if err := runs.Create(&models.JobRun{
		Job:        s.Job,
		StartedAt:  s.StartedAt,
		FinishedAt: s.StartedAt.Add(s.Duration),
		DurationMs: s.Duration.Milliseconds(),
		Processed:  s.Processed,
		Updated:    s.Updated,
		Errored:    s.Errored,
		Trigger:    s.Trigger,
	}); err != nil {
		log.WithError(err).Error("failed to persist job run")
	}
	if err := events.Publish(event.TopicJobCompleted, s); err != nil {
		log.WithError(err).Error("failed to publish job run event")
	}
}

// SnapshotJob recomputes every active member's level assignments and daily
// income amounts for display. It moves no money, and resets the today-earned
// counter for the new day. Each member's work runs under that member's lock
// so a claim cannot interleave with the snapshot's read-modify-write.
type SnapshotJob struct {
	running  atomic.Bool
	members  *repository.MemberRepository
	levels   *repository.LevelRepository
	levelSvc *service.LevelService
	income   *service.IncomeService
	locker   lock.MemberLocker
	runs     *repository.JobRunRepository
	events   *event.Publisher
	log      *logrus.Logger
}

func NewSnapshotJob(
	members *repository.MemberRepository,
	levels *repository.LevelRepository,
	levelSvc *service.LevelService,
	income *service.IncomeService,
	locker lock.MemberLocker,
	runs *repository.JobRunRepository,
	events *event.Publisher,
	log *logrus.Logger,
) *SnapshotJob {
	return &SnapshotJob{
		members:  members,
		levels:   levels,
		levelSvc: levelSvc,
		income:   income,
		locker:   locker,
		runs:     runs,
		events:   events,
		log:      log,
	}
}

func (j *SnapshotJob) Name() string { return JobDailySnapshot }

func (j *SnapshotJob) Run(trigger string) RunSummary {
	if !j.running.CompareAndSwap(false, true) {
		j.log.WithField("job", j.Name()).Warn("previous run still in progress, skipping")
		return RunSummary{Job: j.Name(), Trigger: trigger, Skipped: true}
	}
	defer j.running.Store(false)

	s := RunSummary{Job: j.Name(), Trigger: trigger, StartedAt: time.Now()}
	ids, err := j.members.ListActiveIDs()
	if err != nil {
		j.log.WithError(err).Error("snapshot: listing members failed")
		s.Errored++
		s.Duration = time.Since(s.StartedAt)
		finishRun(j.log, j.runs, j.events, s)
		return s
	}
	for _, id := range ids {
		changed, err := j.snapshotMember(id)
		if err != nil {
			s.Errored++
			j.log.WithError(err).WithField("member_id", id).Error("snapshot: member failed")
			continue
		}
		s.Processed++
		if changed {
			s.Updated++
		}
	}
	s.Duration = time.Since(s.StartedAt)
	finishRun(j.log, j.runs, j.events, s)
	return s
}

func (j *SnapshotJob) snapshotMember(id uint) (bool, error) {
	unlock, err := j.locker.Lock(context.Background(), id)
	if err != nil {
		return false, err
	}
	defer unlock()

	lvl, changed, err := j.levelSvc.Recalculate(id)
	if err != nil {
		return false, err
	}
	member, err := j.members.GetByID(id)
	if err != nil {
		return false, err
	}
	inc, err := j.income.DailyIncome(member, lvl)
	if err != nil {
		return false, err
	}
	if err := j.levels.UpdateDailyIncome(lvl.ID, inc.Character, inc.Digit); err != nil {
		return false, err
	}
	if !member.TodayEarned.IsZero() {
		if err := j.members.ResetTodayEarned(id); err != nil {
			return false, err
		}
	}
	return changed, nil
}

// WeeklyRecalcJob forces a full reclassification of the population and
// re-propagates character-level changes up each affected referral chain.
type WeeklyRecalcJob struct {
	running  atomic.Bool
	members  *repository.MemberRepository
	levelSvc *service.LevelService
	runs     *repository.JobRunRepository
	events   *event.Publisher
	log      *logrus.Logger
}

func NewWeeklyRecalcJob(
	members *repository.MemberRepository,
	levelSvc *service.LevelService,
	runs *repository.JobRunRepository,
	events *event.Publisher,
	log *logrus.Logger,
) *WeeklyRecalcJob {
	return &WeeklyRecalcJob{members: members, levelSvc: levelSvc, runs: runs, events: events, log: log}
}

func (j *WeeklyRecalcJob) Name() string { return JobWeeklyRecalc }

func (j *WeeklyRecalcJob) Run(trigger string) RunSummary {
	if !j.running.CompareAndSwap(false, true) {
		j.log.WithField("job", j.Name()).Warn("previous run still in progress, skipping")
		return RunSummary{Job: j.Name(), Trigger: trigger, Skipped: true}
	}
	defer j.running.Store(false)

	s := RunSummary{Job: j.Name(), Trigger: trigger, StartedAt: time.Now()}
	ids, err := j.members.ListActiveIDs()
	if err != nil {
		j.log.WithError(err).Error("weekly recalc: listing members failed")
		s.Errored++
		s.Duration = time.Since(s.StartedAt)
		finishRun(j.log, j.runs, j.events, s)
		return s
	}
	for _, id := range ids {
		changed, err := j.levelSvc.RecalculateWithUpline(id)
		if err != nil {
			s.Errored++
			j.log.WithError(err).WithField("member_id", id).Error("weekly recalc: member failed")
			continue
		}
		s.Processed++
		if changed {
			s.Updated++
		}
	}
	s.Duration = time.Since(s.StartedAt)
	finishRun(j.log, j.runs, j.events, s)
	return s
}

// SelfIncomeJob credits the flat self-income percentage of every active,
// non-blocked member's positive normal balance. Zero balances are skipped
// without error.
type SelfIncomeJob struct {
	running atomic.Bool
	db      *gorm.DB
	plan    domain.CompensationPlan
	members *repository.MemberRepository
	wallets *repository.WalletRepository
	income  *service.IncomeService
	locker  lock.MemberLocker
	runs    *repository.JobRunRepository
	events  *event.Publisher
	log     *logrus.Logger
}

func NewSelfIncomeJob(
	db *gorm.DB,
	plan domain.CompensationPlan,
	members *repository.MemberRepository,
	wallets *repository.WalletRepository,
	income *service.IncomeService,
	locker lock.MemberLocker,
	runs *repository.JobRunRepository,
	events *event.Publisher,
	log *logrus.Logger,
) *SelfIncomeJob {
	return &SelfIncomeJob{
		db:      db,
		plan:    plan,
		members: members,
		wallets: wallets,
		income:  income,
		locker:  locker,
		runs:    runs,
		events:  events,
		log:     log,
	}
}

func (j *SelfIncomeJob) Name() string { return JobSelfIncome }

func (j *SelfIncomeJob) Run(trigger string) RunSummary {
	if !j.running.CompareAndSwap(false, true) {
		j.log.WithField("job", j.Name()).Warn("previous run still in progress, skipping")
		return RunSummary{Job: j.Name(), Trigger: trigger, Skipped: true}
	}
	defer j.running.Store(false)

	s := RunSummary{Job: j.Name(), Trigger: trigger, StartedAt: time.Now()}
	ids, err := j.members.ListCreditableIDs()
	if err != nil {
		j.log.WithError(err).Error("self income: listing members failed")
		s.Errored++
		s.Duration = time.Since(s.StartedAt)
		finishRun(j.log, j.runs, j.events, s)
		return s
	}
	for _, id := range ids {
		credited, err := j.creditMember(id)
		if err != nil {
			s.Errored++
			j.log.WithError(err).WithField("member_id", id).Error("self income: member failed")
			continue
		}
		s.Processed++
		if credited {
			s.Updated++
		}
	}
	s.Duration = time.Since(s.StartedAt)
	finishRun(j.log, j.runs, j.events, s)
	return s
}

func (j *SelfIncomeJob) creditMember(id uint) (bool, error) {
	unlock, err := j.locker.Lock(context.Background(), id)
	if err != nil {
		return false, err
	}
	defer unlock()

	bal, err := j.wallets.Balance(id, domain.WalletNormal)
	if err != nil {
		return false, err
	}
	if !bal.IsPositive() {
		return false, nil
	}
	amount := j.income.SelfIncome(bal)
	if !amount.IsPositive() {
		return false, nil
	}
	desc := fmt.Sprintf("daily self income %s%%", j.plan.SelfIncomePercent)
	err = j.db.Transaction(func(tx *gorm.DB) error {
		if _, err := j.wallets.WithTx(tx).Credit(id, domain.WalletNormal, amount, domain.TxDailyIncome, desc); err != nil {
			return err
		}
		member, err := j.members.WithTx(tx).GetByID(id)
		if err != nil {
			return err
		}
		member.TotalEarned = member.TotalEarned.Add(amount)
		member.TodayEarned = member.TodayEarned.Add(amount)
		return j.members.WithTx(tx).Update(member)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
