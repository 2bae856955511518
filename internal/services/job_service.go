package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
)

// Maintenance task names
const (
	TaskPruneSessions        = "prune-sessions"
	TaskLedgerIntegrity      = "ledger-integrity"
	TaskTrialBalanceSnapshot = "trial-balance-snapshot"
	TaskExpireInvitations    = "expire-invitations"
)

type JobService struct {
	worker *jobs.Worker
}

func NewJobService(worker *jobs.Worker) *JobService {
	return &JobService{
		worker: worker,
	}
}

// ScheduleMaintenance registers the recurring maintenance tasks
func (s *JobService) ScheduleMaintenance(svcs *Services, snapshotRetention time.Duration) {
	s.worker.Register(TaskPruneSessions, time.Hour, false, func(ctx context.Context) error {
		tokens, sessions, err := svcs.Auth.PruneExpired(ctx)
		if err != nil {
			return err
		}
		resets, err := svcs.Recovery.PruneResets(ctx)
		if err != nil {
			return err
		}
		logger.Info("Pruned expired credentials", "refresh_tokens", tokens, "sessions", sessions, "password_resets", resets)
		return nil
	})

	s.worker.Register(TaskExpireInvitations, time.Hour, true, func(ctx context.Context) error {
		n, err := svcs.Invitation.ExpireStale(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("Expired stale invitations", "count", n)
		}
		return nil
	})

	s.worker.Register(TaskLedgerIntegrity, 24*time.Hour, false, func(ctx context.Context) error {
		report, err := svcs.Journal.RecalculateDrafts(ctx)
		if err != nil {
			return err
		}
		if report.Repaired > 0 {
			logger.Warn("Repaired drifted draft totals", "checked", report.Checked, "repaired", report.Repaired, "entries", report.Drifted)
		}
		return nil
	})

	s.worker.Register(TaskTrialBalanceSnapshot, 24*time.Hour, false, func(ctx context.Context) error {
		path, err := svcs.Report.SnapshotTrialBalance(ctx)
		if err != nil {
			return err
		}
		pruned, err := svcs.Report.PruneSnapshots(snapshotRetention)
		if err != nil {
			return err
		}
		logger.Info("Archived trial balance", "path", path, "pruned", pruned)
		return nil
	})

	logger.Info("Scheduled recurring jobs", "tasks", len(s.worker.Tasks()))
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()
	return map[string]interface{}{
		"active_jobs":    stats.ActiveJobs,
		"completed_jobs": stats.CompletedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"max_concurrent": stats.MaxConcurrent,
		"tasks":          s.worker.Tasks(),
	}
}

// Tasks returns the registered tasks with their last run
func (s *JobService) Tasks() []jobs.TaskStatus {
	return s.worker.Tasks()
}

// Trigger runs a registered task now
func (s *JobService) Trigger(name string) error {
	if err := s.worker.Trigger(name); err != nil {
		if errors.Is(err, jobs.ErrUnknownTask) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return err
	}
	return nil
}
