package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/config"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeOnMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type authFixture struct {
	svc      *AuthService
	users    *mockUserRepo
	tokens   *mockRefreshTokenRepo
	sessions *mockSessionRepo
	security *mockSecurityRepo
	activity *fakeActivityRepo
	user     models.User
	ctx      context.Context
	clock    time.Time
}

func newAuthFixture(t *testing.T, status string) *authFixture {
	t.Helper()
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	user := models.User{ID: uuid.New(), Name: "Ana", Email: "ana@example.com", Password: hash, Role: models.RoleManager, Status: status}
	f := &authFixture{
		users:    newMockUserRepo(user),
		tokens:   newMockRefreshTokenRepo(),
		sessions: newMockSessionRepo(),
		security: &mockSecurityRepo{},
		activity: &fakeActivityRepo{},
		user:     user,
		ctx:      WithActor(context.Background(), Actor{IPAddress: "10.0.0.1", UserAgent: chromeOnMac}),
		clock:    time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 24, SessionTTLHours: 72, RefreshTokenTTLHours: 720}
	f.svc = NewAuthService(f.users, f.tokens, f.sessions, f.security, NewAuditService(f.activity), cfg)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func TestAuthService_LoginOpensSession(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)

	result, err := f.svc.Login(f.ctx, "ANA@example.com", "secret123")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Len(t, result.RefreshToken, 64)
	assert.Equal(t, f.user.ID, result.User.ID)
	require.NotNil(t, result.User.LastLoginAt)

	session, err := f.sessions.FindByID(f.ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Chrome", session.Browser)
	assert.Equal(t, "macOS", session.OS)
	assert.Equal(t, "10.0.0.1", session.IPAddress)
	assert.Equal(t, f.clock.Add(72*time.Hour), session.ExpiresAt)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return f.clock }))
	require.NoError(t, err)
	assert.Equal(t, f.user.ID.String(), claims["user_id"])
	assert.Equal(t, result.SessionID.String(), claims["sid"])
	assert.Equal(t, models.RoleManager, claims["role"])

	assert.Equal(t, []string{models.ActivityLogin}, f.activity.events())
}

func TestAuthService_LoginWrongPasswordRecordsEvent(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)

	result, err := f.svc.Login(f.ctx, "ana@example.com", "nope")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, []string{models.SecurityEventFailedLogin}, f.security.types())
	assert.Equal(t, 0, f.tokens.count())
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)

	_, err := f.svc.Login(f.ctx, "ghost@example.com", "secret123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, f.security.events, 1)
	assert.Nil(t, f.security.events[0].UserID)
}

func TestAuthService_LoginInactiveUser(t *testing.T) {
	f := newAuthFixture(t, models.StatusInactive)

	result, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAccountInactive)
	assert.Equal(t, []string{models.SecurityEventInactiveLogin}, f.security.types())
}

func TestAuthService_RepeatedFailuresEscalate(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)

	for i := 0; i < failedLoginThreshold; i++ {
		_, _ = f.svc.Login(f.ctx, "ana@example.com", "wrong")
	}

	types := f.security.types()
	assert.Equal(t, models.SecurityEventSuspiciousAccess, types[len(types)-1])
	assert.Equal(t, models.SeverityHigh, f.security.events[len(types)-1].Severity)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)
	login, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Hour)
	refreshed, err := f.svc.Refresh(f.ctx, login.RefreshToken)

	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, login.SessionID, refreshed.SessionID)
	assert.Equal(t, 1, f.tokens.count())

	_, err = f.svc.Refresh(f.ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RefreshExpiredToken(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)
	login, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	f.clock = f.clock.Add(31 * 24 * time.Hour)
	_, err = f.svc.Refresh(f.ctx, login.RefreshToken)

	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, 0, f.tokens.count())
}

func TestAuthService_RefreshInactiveUser(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)
	login, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	u := f.users.users[f.user.ID]
	u.Status = models.StatusInactive
	f.users.users[f.user.ID] = u

	result, err := f.svc.Refresh(f.ctx, login.RefreshToken)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestAuthService_LogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)
	login, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(f.ctx, login.RefreshToken))

	assert.Equal(t, 0, f.tokens.count())
	assert.ErrorIs(t, f.svc.ValidateSession(f.ctx, login.SessionID), ErrSessionRevoked)
	_, err = f.svc.Refresh(f.ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NoError(t, f.svc.Logout(f.ctx, "unknown"))
}

func TestAuthService_SessionsAndRevoke(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)
	first, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	f.clock = f.clock.Add(time.Minute)
	second, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	ctx := WithActor(f.ctx, Actor{UserID: &f.user.ID, SessionID: &second.SessionID})
	sessions, err := f.svc.Sessions(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Current)
	assert.False(t, sessions[1].Current)

	require.NoError(t, f.svc.RevokeSession(ctx, f.user.ID, first.SessionID))
	assert.ErrorIs(t, f.svc.RevokeSession(ctx, f.user.ID, first.SessionID), ErrInvalidState)
	assert.ErrorIs(t, f.svc.RevokeSession(ctx, uuid.New(), second.SessionID), ErrNotFound)

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, f.security.types(), models.SecurityEventSessionRevoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)
	keep, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	other, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	ctx := WithActor(f.ctx, Actor{UserID: &f.user.ID, SessionID: &keep.SessionID})
	err = f.svc.ChangePassword(ctx, f.user.ID, ChangePasswordInput{CurrentPassword: "bad", NewPassword: "newsecret1"})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	err = f.svc.ChangePassword(ctx, f.user.ID, ChangePasswordInput{CurrentPassword: "secret123", NewPassword: "newsecret1"})
	require.NoError(t, err)

	assert.NoError(t, f.svc.ValidateSession(ctx, keep.SessionID))
	assert.ErrorIs(t, f.svc.ValidateSession(ctx, other.SessionID), ErrSessionRevoked)

	_, err = f.svc.Login(f.ctx, "ana@example.com", "newsecret1")
	assert.NoError(t, err)
	assert.Contains(t, f.security.types(), models.SecurityEventPasswordChanged)
}

func TestAuthService_ValidateSessionTouchesActivity(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)
	login, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	f.clock = f.clock.Add(5 * time.Minute)
	require.NoError(t, f.svc.ValidateSession(f.ctx, login.SessionID))

	session, _ := f.sessions.FindByID(f.ctx, login.SessionID)
	assert.Equal(t, f.clock, session.LastActivityAt)

	f.clock = f.clock.Add(100 * time.Hour)
	assert.ErrorIs(t, f.svc.ValidateSession(f.ctx, login.SessionID), ErrSessionRevoked)
	assert.ErrorIs(t, f.svc.ValidateSession(f.ctx, uuid.New()), ErrSessionRevoked)
}

func TestAuthService_PruneExpired(t *testing.T) {
	f := newAuthFixture(t, models.StatusActive)
	_, err := f.svc.Login(f.ctx, "ana@example.com", "secret123")
	require.NoError(t, err)

	f.clock = f.clock.Add(40 * 24 * time.Hour)
	tokens, sessions, err := f.svc.PruneExpired(f.ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), tokens)
	assert.Equal(t, int64(1), sessions)
}

func TestParseDevice(t *testing.T) {
	tests := []struct {
		ua      string
		browser string
		os      string
		kind    string
	}{
		{chromeOnMac, "Chrome", "macOS", DeviceDesktop},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Mobile/15E148 Safari/604.1", "Safari", "iOS", DeviceMobile},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0", "Edge", "Windows", DeviceDesktop},
		{"Mozilla/5.0 (Linux; Android 14; SM-X710) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "Chrome", "Android", DeviceTablet},
		{"curl/8.4.0", "curl", "Unknown", DeviceUnknown},
		{"", "Unknown", "Unknown", DeviceUnknown},
	}
	for _, tt := range tests {
		info := ParseDevice(tt.ua)
		assert.Equal(t, tt.browser, info.Browser, tt.ua)
		assert.Equal(t, tt.os, info.OS, tt.ua)
		assert.Equal(t, tt.kind, info.Type, tt.ua)
	}
}
