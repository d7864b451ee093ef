package CronJobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Services"
	"Stockbook/config"
)

// DefaultAuditSchedule runs at 01:00:00 every day. Schedules take a leading
// seconds field.
const DefaultAuditSchedule = "0 0 1 * * *"

const auditTimeout = 5 * time.Minute

// LedgerAuditor periodically compares the stock ledger with the documents
// that produced it and logs any discrepancy.
type LedgerAuditor struct {
	cronScheduler  *cron.Cron
	db             *gorm.DB
	log            *logrus.Logger
	runImmediately bool
	jobID          cron.EntryID
}

func NewLedgerAuditor(db *gorm.DB, log *logrus.Logger, runImmediately bool) *LedgerAuditor {
	return &LedgerAuditor{
		cronScheduler:  cron.New(cron.WithSeconds()),
		db:             db,
		log:            log,
		runImmediately: runImmediately,
	}
}

// Start schedules the audit and starts the scheduler.
func (a *LedgerAuditor) Start(schedule string) error {
	if err := a.UpdateSchedule(schedule); err != nil {
		return err
	}
	a.cronScheduler.Start()
	a.log.WithFields(logrus.Fields{
		"module":   "CronJobs",
		"schedule": schedule,
	}).Info("ledger audit scheduled")

	if a.runImmediately {
		go a.RunNow(context.Background())
	}
	return nil
}

// Stop waits for a running audit to finish.
func (a *LedgerAuditor) Stop() {
	<-a.cronScheduler.Stop().Done()
	a.log.WithField("module", "CronJobs").Info("ledger audit stopped")
}

// UpdateSchedule replaces the current schedule, e.g. "0 */30 * * * *".
func (a *LedgerAuditor) UpdateSchedule(schedule string) error {
	id, err := a.cronScheduler.AddFunc(schedule, func() {
		a.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule ledger audit %q: %w", schedule, err)
	}
	if a.jobID != 0 {
		a.cronScheduler.Remove(a.jobID)
	}
	a.jobID = id
	return nil
}

// RunNow audits the ledger once and returns the report.
func (a *LedgerAuditor) RunNow(ctx context.Context) (*Services.AuditReport, error) {
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	start := time.Now()
	report, err := Services.AuditLedger(ctx, a.db, a.log)
	if err != nil {
		config.LogError(a.log, "CronJobs", "RunNow", "auditing stock ledger", nil, err)
		return nil, err
	}

	entry := a.log.WithFields(logrus.Fields{
		"module":      "CronJobs",
		"consistent":  report.Consistent(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if !report.Consistent() {
		entry.Warn("scheduled ledger audit needs attention")
		return report, nil
	}
	entry.Info("scheduled ledger audit finished")
	return report, nil
}
