package services

import (
	"context"

	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
	"go.uber.org/multierr"
)

// SecurityAlerter e-mails administrators about high-severity security events
type SecurityAlerter struct {
	userRepo repository.UserRepository
	mailer   Mailer
	worker   *jobs.Worker
}

func NewSecurityAlerter(userRepo repository.UserRepository, mailer Mailer, worker *jobs.Worker) *SecurityAlerter {
	return &SecurityAlerter{userRepo: userRepo, mailer: mailer, worker: worker}
}

// Alert queues one e-mail per administrator
func (a *SecurityAlerter) Alert(_ context.Context, event models.SecurityEvent) {
	a.worker.EnqueueAsync(func(ctx context.Context) error {
		return a.notifyAdmins(ctx, &event)
	})
}

func (a *SecurityAlerter) notifyAdmins(ctx context.Context, event *models.SecurityEvent) error {
	admins, err := a.userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}

	var errs error
	for i := range admins {
		if !admins[i].IsActive() {
			continue
		}
		errs = multierr.Append(errs, a.mailer.SendSecurityAlert(ctx, &admins[i], event))
	}
	if errs != nil {
		logger.Warn("Some security alerts could not be delivered",
			"event_type", event.EventType, "failures", len(multierr.Errors(errs)))
	}
	return errs
}
