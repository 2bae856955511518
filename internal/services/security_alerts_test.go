package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityAlerter_NotifiesActiveAdmins(t *testing.T) {
	users := newMockUserRepo(
		models.User{ID: uuid.New(), Email: "root@example.com", Role: models.RoleAdmin, Status: models.StatusActive},
		models.User{ID: uuid.New(), Email: "gone@example.com", Role: models.RoleAdmin, Status: models.StatusInactive},
		models.User{ID: uuid.New(), Email: "clerk@example.com", Role: models.RoleUser, Status: models.StatusActive},
	)
	mailer := &recordingMailer{}
	worker := jobs.NewWorker(1)
	alerter := NewSecurityAlerter(users, mailer, worker)

	alerter.Alert(context.Background(), models.SecurityEvent{EventType: models.SecurityEventSuspiciousAccess, Severity: models.SeverityHigh})
	worker.Shutdown()

	assert.Equal(t, []string{"root@example.com|suspicious_access"}, mailer.alerts)
}

func TestAuthService_EscalationRaisesAlert(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)
	var alerts []models.SecurityEvent
	f.svc.OnSecurityAlert(func(ctx context.Context, event models.SecurityEvent) {
		alerts = append(alerts, event)
	})

	for i := 0; i < failedLoginThreshold; i++ {
		_, err := f.svc.Login(f.ctx, f.user.Email, "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	require.Len(t, alerts, 1)
	assert.Equal(t, models.SecurityEventSuspiciousAccess, alerts[0].EventType)
	assert.Equal(t, "10.0.0.1", alerts[0].IPAddress)
}
