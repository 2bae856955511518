package services

import (
	"time"

	"github.com/sjperalta/modular-erp-api/internal/config"
	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth       *AuthService
	Recovery   *RecoveryService
	User       *UserService
	Module     *ModuleService
	Invitation *InvitationService
	MixDesign  *MixDesignService
	Account    *AccountService
	Journal    *JournalService
	Export     *ExportService
	Report     *ReportService
	Audit      *AuditService
	Email      *EmailService
	Job        *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config) *Services {
	auditSvc := NewAuditService(repos.ActivityLog)
	emailSvc := NewEmailService(cfg)

	authSvc := NewAuthService(repos.User, repos.RefreshToken, repos.Session, repos.SecurityEvent, auditSvc, cfg)
	authSvc.OnSecurityAlert(NewSecurityAlerter(repos.User, emailSvc, worker).Alert)

	accountSvc := NewAccountService(repos.Ledger, auditSvc)
	journalSvc := NewJournalService(repos.Ledger, auditSvc, NewReversalStrategy(cfg.LedgerReversalMode))
	exportSvc := NewExportService(accountSvc, journalSvc)

	return &Services{
		Auth:       authSvc,
		Recovery:   NewRecoveryService(authSvc, repos.PasswordReset, emailSvc, worker, time.Duration(cfg.PasswordResetTTLMinutes)*time.Minute),
		User:       NewUserService(repos.User, repos.Session, repos.RefreshToken, auditSvc),
		Module:     NewModuleService(repos.Module, auditSvc),
		Invitation: NewInvitationService(repos.Invitation, repos.User, repos.Module, auditSvc, emailSvc, worker, cfg),
		MixDesign:  NewMixDesignService(repos.MixDesign, auditSvc),
		Account:    accountSvc,
		Journal:    journalSvc,
		Export:     exportSvc,
		Report:     NewReportService(accountSvc, exportSvc, store, cfg.WkhtmltopdfPath),
		Audit:      auditSvc,
		Email:      emailSvc,
		Job:        NewJobService(worker),
	}
}

// ScheduleJobs registers the recurring maintenance tasks on the worker
func (s *Services) ScheduleJobs(cfg *config.Config) {
	s.Job.ScheduleMaintenance(s, time.Duration(cfg.SnapshotRetentionDays)*24*time.Hour)
}
