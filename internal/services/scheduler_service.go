package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bankledger/internal/models"
	"bankledger/internal/repositories"
)

// SchedulerService records deferred ledger operations and executes them
// through the engine once their date arrives. The engine commits the money
// movement and the executed flag in one transaction, so an entry runs
// exactly once; a due entry that fails stays pending and is retried on the
// next trigger.
type SchedulerService struct {
	schedRepo   repositories.ScheduledTransactionRepositoryInterface
	auditRepo   repositories.AuditLogRepositoryInterface
	ledger      LedgerServiceInterface
	auditLogger AuditLoggerInterface
	metrics     MetricsRecorderInterface
	interval    time.Duration
	logger      *slog.Logger

	now func() time.Time
}

func NewSchedulerService(
	schedRepo repositories.ScheduledTransactionRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	ledger LedgerServiceInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	interval time.Duration,
) SchedulerServiceInterface {
	return &SchedulerService{
		schedRepo:   schedRepo,
		auditRepo:   auditRepo,
		ledger:      ledger,
		auditLogger: auditLogger,
		metrics:     metrics,
		interval:    interval,
		logger:      slog.Default(),
		now:         time.Now,
	}
}

// Schedule records a future operation. The scheduled date may be today but
// never in the past, and the referenced accounts must exist up front.
func (s *SchedulerService) Schedule(sched *models.ScheduledTransaction) error {
	if sched == nil {
		return errors.New("scheduled transaction cannot be nil")
	}
	if err := sched.Validate(); err != nil {
		return err
	}
	if models.CalendarDay(sched.ScheduledDate).Before(models.CalendarDay(s.now())) {
		return models.ErrScheduleDateInPast
	}

	if _, err := s.ledger.GetAccount(sched.FromAccount); err != nil {
		return err
	}
	if sched.Kind == models.ScheduleKindTransfer {
		if _, err := s.ledger.GetAccount(sched.ToAccount); err != nil {
			return err
		}
	}

	if err := s.schedRepo.Create(sched); err != nil {
		return err
	}

	s.audit(models.AuditActionScheduleAdded, sched, nil)
	s.metrics.IncrementCounter("scheduler.scheduled", map[string]string{
		"kind": sched.Kind,
	})

	s.logger.Info("transaction scheduled",
		slog.Int64("schedule_id", sched.ID),
		slog.Int64("from_account", sched.FromAccount),
		slog.String("kind", sched.Kind),
		slog.Time("scheduled_date", sched.ScheduledDate),
	)

	return nil
}

func (s *SchedulerService) Get(id int64) (*models.ScheduledTransaction, error) {
	return s.schedRepo.GetByID(id)
}

func (s *SchedulerService) ListPending(accountNo int64) ([]*models.ScheduledTransaction, error) {
	return s.schedRepo.ListPending(accountNo)
}

// Cancel removes a pending entry. Executed entries are history and cannot
// be cancelled.
func (s *SchedulerService) Cancel(id int64) error {
	sched, err := s.schedRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.schedRepo.CancelPending(id); err != nil {
		return err
	}

	s.audit(models.AuditActionScheduleCancel, sched, nil)
	s.metrics.IncrementCounter("scheduler.cancelled", map[string]string{
		"kind": sched.Kind,
	})

	s.logger.Info("scheduled transaction cancelled",
		slog.Int64("schedule_id", id),
		slog.Int64("from_account", sched.FromAccount),
	)

	return nil
}

// RunDue executes every pending entry due on or before today, restricted to
// one account when accountNo is non-zero. Failed entries are counted and
// left pending for the next run.
func (s *SchedulerService) RunDue(today time.Time, accountNo int64) (int, int, error) {
	due, err := s.schedRepo.FetchDue(today, accountNo)
	if err != nil {
		return 0, 0, err
	}

	executed, failed := 0, 0
	for _, sched := range due {
		if _, err := s.ledger.RunScheduled(sched); err != nil {
			if errors.Is(err, repositories.ErrScheduleAlreadyDone) {
				// A concurrent run already applied it.
				continue
			}
			failed++
			s.auditLogger.LogScheduleFailed(context.Background(), sched.ID, sched.FromAccount, sched.Kind, err.Error(), true)
			s.audit(models.AuditActionScheduleFailed, sched, err)
			s.metrics.IncrementCounter("scheduler.executions", map[string]string{
				"kind":   sched.Kind,
				"status": "failed",
			})
			continue
		}

		executed++
		s.auditLogger.LogScheduleExecuted(context.Background(), sched.ID, sched.FromAccount, sched.Kind)
		s.audit(models.AuditActionScheduleRun, sched, nil)
		s.metrics.IncrementCounter("scheduler.executions", map[string]string{
			"kind":   sched.Kind,
			"status": "success",
		})
	}

	if len(due) > 0 {
		s.logger.Info("scheduler run completed",
			slog.Int("due", len(due)),
			slog.Int("executed", executed),
			slog.Int("failed", failed),
		)
	}

	return executed, failed, nil
}

// Start runs the scheduler loop until the context is cancelled. It sweeps
// once immediately to catch entries that came due while the process was
// down, then on every interval tick.
func (s *SchedulerService) Start(ctx context.Context) {
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SchedulerService) sweep() {
	if _, _, err := s.RunDue(s.now(), 0); err != nil {
		s.logger.Error("scheduler sweep failed", slog.String("error", err.Error()))
	}
}

// scheduleMemo is the ledger memo recorded when a schedule executes.
func scheduleMemo(sched *models.ScheduledTransaction) string {
	if sched.Memo != "" {
		return sched.Memo
	}
	return "Scheduled " + strings.ToLower(sched.Kind)
}

func (s *SchedulerService) audit(action string, sched *models.ScheduledTransaction, execErr error) {
	log := &models.AuditLog{
		AccountNo: &sched.FromAccount,
		Action:    action,
		Resource:  "schedule",
	}
	log.SetMetadata("schedule_id", sched.ID)
	log.SetMetadata("kind", sched.Kind)
	log.SetMetadata("amount", sched.Amount.StringFixed(2))
	if sched.ToAccount != 0 {
		log.SetMetadata("to_account", sched.ToAccount)
	}
	if execErr != nil {
		log.SetMetadata("error", execErr.Error())
	}

	if err := s.auditRepo.Create(log); err != nil {
		s.logger.Error("failed to create audit log",
			slog.String("action", action),
			slog.Int64("schedule_id", sched.ID),
			slog.String("error", err.Error()),
		)
	}
}
