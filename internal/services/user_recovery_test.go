package services

import (
	"strings"
	"testing"
	"time"

	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recoveryFixture struct {
	*authFixture
	svc    *RecoveryService
	resets *mockPasswordResetRepo
	mailer *recordingMailer
	worker *jobs.Worker
}

func newRecoveryFixture(t *testing.T, status string) *recoveryFixture {
	t.Helper()
	f := &recoveryFixture{
		authFixture: newAuthFixture(t, status),
		resets:      newMockPasswordResetRepo(),
		mailer:      &recordingMailer{},
		worker:      jobs.NewWorker(1),
	}
	t.Cleanup(f.worker.Shutdown)
	f.svc = NewRecoveryService(f.authFixture.svc, f.resets, f.mailer, f.worker, time.Hour)
	return f
}

// requestToken runs the forgot-password flow and returns the e-mailed token
func (f *recoveryFixture) requestToken(t *testing.T) string {
	t.Helper()
	before := len(f.mailer.sentResets())
	require.NoError(t, f.svc.ForgotPassword(f.ctx, " ANA@example.com "))
	require.Eventually(t, func() bool { return len(f.mailer.sentResets()) > before }, time.Second, 5*time.Millisecond)

	sent := f.mailer.sentResets()
	to, token, ok := strings.Cut(sent[len(sent)-1], "|")
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", to)
	return token
}

func TestRecoveryService_ForgotPasswordStoresHashedToken(t *testing.T) {
	f := newRecoveryFixture(t, models.StatusActive)

	token := f.requestToken(t)

	assert.Len(t, token, 64)
	stored := f.resets.all()
	require.Len(t, stored, 1)
	assert.Equal(t, hashResetToken(token), stored[0].TokenHash)
	assert.NotEqual(t, token, stored[0].TokenHash)
	assert.Equal(t, f.clock.Add(time.Hour), stored[0].ExpiresAt)
	assert.Equal(t, "10.0.0.1", stored[0].IPAddress)
	assert.Contains(t, f.security.types(), models.SecurityEventResetRequested)
}

func TestRecoveryService_ForgotPasswordUnknownEmail(t *testing.T) {
	f := newRecoveryFixture(t, models.StatusActive)

	err := f.svc.ForgotPassword(f.ctx, "nobody@example.com")

	require.NoError(t, err)
	assert.Empty(t, f.resets.all())
	assert.Equal(t, []string{models.SecurityEventResetUnknown}, f.security.types())
}

func TestRecoveryService_ForgotPasswordInactiveAccount(t *testing.T) {
	f := newRecoveryFixture(t, models.StatusInactive)

	require.NoError(t, f.svc.ForgotPassword(f.ctx, "ana@example.com"))

	assert.Empty(t, f.resets.all())
	assert.Empty(t, f.mailer.sentResets())
}

func TestRecoveryService_ResetPasswordSignsOutEverywhere(t *testing.T) {
	f := newRecoveryFixture(t, models.StatusActive)
	first, err := f.authFixture.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	second, err := f.authFixture.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	token := f.requestToken(t)

	f.clock = f.clock.Add(10 * time.Minute)
	err = f.svc.ResetPassword(f.ctx, ResetPasswordInput{Token: token, NewPassword: "brandnew1"})

	require.NoError(t, err)
	assert.ErrorIs(t, f.authFixture.svc.ValidateSession(f.ctx, first.SessionID), ErrSessionRevoked)
	assert.ErrorIs(t, f.authFixture.svc.ValidateSession(f.ctx, second.SessionID), ErrSessionRevoked)
	assert.Equal(t, 0, f.tokens.count())

	_, err = f.authFixture.svc.Login(f.ctx, "ana@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.authFixture.svc.Login(f.ctx, "ana@example.com", "brandnew1")
	assert.NoError(t, err)
	assert.Contains(t, f.security.types(), models.SecurityEventPasswordReset)
}

func TestRecoveryService_ResetTokenIsSingleUse(t *testing.T) {
	f := newRecoveryFixture(t, models.StatusActive)
	token := f.requestToken(t)

	require.NoError(t, f.svc.ResetPassword(f.ctx, ResetPasswordInput{Token: token, NewPassword: "brandnew1"}))
	err := f.svc.ResetPassword(f.ctx, ResetPasswordInput{Token: token, NewPassword: "another12"})

	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.Contains(t, f.security.types(), models.SecurityEventInvalidReset)
}

func TestRecoveryService_ResetTokenExpires(t *testing.T) {
	f := newRecoveryFixture(t, models.StatusActive)
	token := f.requestToken(t)

	f.clock = f.clock.Add(61 * time.Minute)
	err := f.svc.ResetPassword(f.ctx, ResetPasswordInput{Token: token, NewPassword: "brandnew1"})

	assert.ErrorIs(t, err, ErrInvalidResetToken)
	_, err = f.authFixture.svc.Login(f.ctx, "ana@example.com", "secret123")
	assert.NoError(t, err)
}

func TestRecoveryService_NewRequestReplacesOldToken(t *testing.T) {
	f := newRecoveryFixture(t, models.StatusActive)
	old := f.requestToken(t)
	fresh := f.requestToken(t)

	assert.ErrorIs(t, f.svc.ResetPassword(f.ctx, ResetPasswordInput{Token: old, NewPassword: "brandnew1"}), ErrInvalidResetToken)
	assert.NoError(t, f.svc.ResetPassword(f.ctx, ResetPasswordInput{Token: fresh, NewPassword: "brandnew1"}))
}

func TestRecoveryService_PruneResets(t *testing.T) {
	f := newRecoveryFixture(t, models.StatusActive)
	f.requestToken(t)
	f.requestToken(t)

	f.clock = f.clock.Add(2 * time.Hour)
	n, err := f.svc.PruneResets(f.ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, f.resets.all())
}
