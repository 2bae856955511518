package handlers

import (
	"github.com/sjperalta/modular-erp-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	User       *UserHandler
	Module     *ModuleHandler
	UserModule *UserModuleHandler
	Invitation *InvitationHandler
	Account    *AccountHandler
	Journal    *JournalHandler
	Report     *ReportHandler
	MixDesign  *MixDesignHandler
	Audit      *AuditHandler
	Job        *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(),
		Auth:       NewAuthHandler(svcs.Auth, svcs.Recovery),
		User:       NewUserHandler(svcs.User, svcs.Audit),
		Module:     NewModuleHandler(svcs.Module),
		UserModule: NewUserModuleHandler(svcs.Module),
		Invitation: NewInvitationHandler(svcs.Invitation),
		Account:    NewAccountHandler(svcs.Account),
		Journal:    NewJournalHandler(svcs.Journal),
		Report:     NewReportHandler(svcs.Export, svcs.Report),
		MixDesign:  NewMixDesignHandler(svcs.MixDesign),
		Audit:      NewAuditHandler(svcs.Audit, svcs.Auth),
		Job:        NewJobHandler(svcs.Job),
	}
}
