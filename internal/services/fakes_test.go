package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	repository.UserRepository
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func newMockUserRepo(users ...models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[uuid.UUID]models.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.LastLoginAt = &at
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if role := query.Filters["role"]; role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) FindAdmins(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.IsAdmin() {
			out = append(out, u)
		}
	}
	return out, nil
}

type mockRefreshTokenRepo struct {
	repository.RefreshTokenRepository
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func newMockRefreshTokenRepo() *mockRefreshTokenRepo {
	return &mockRefreshTokenRepo{tokens: make(map[string]models.RefreshToken)}
}

func (m *mockRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rt, nil
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Token] = *token
	return nil
}

func (m *mockRefreshTokenRepo) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *mockRefreshTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, rt := range m.tokens {
		if rt.UserID == userID {
			delete(m.tokens, k)
		}
	}
	return nil
}

func (m *mockRefreshTokenRepo) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, rt := range m.tokens {
		if rt.SessionID != nil && *rt.SessionID == sessionID {
			delete(m.tokens, k)
		}
	}
	return nil
}

func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, rt := range m.tokens {
		if rt.ExpiresAt != nil && rt.ExpiresAt.Before(now) {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

func (m *mockRefreshTokenRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

type mockSessionRepo struct {
	repository.SessionRepository
	mu       sync.Mutex
	sessions map[uuid.UUID]models.UserSession
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[uuid.UUID]models.UserSession)}
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.UserSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	m.sessions[session.ID] = *session
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (m *mockSessionRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserSession
	for _, s := range m.sessions {
		if s.UserID == userID && s.IsActive(now) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	return out, nil
}

func (m *mockSessionRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[id]
	s.LastActivityAt = at
	m.sessions[id] = s
	return nil
}

func (m *mockSessionRepo) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok && s.RevokedAt == nil {
		s.RevokedAt = &at
		m.sessions[id] = s
	}
	return nil
}

func (m *mockSessionRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID, except *uuid.UUID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.UserID != userID || s.RevokedAt != nil || (except != nil && id == *except) {
			continue
		}
		s.RevokedAt = &at
		m.sessions[id] = s
		n++
	}
	return n, nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

type mockSecurityRepo struct {
	repository.SecurityEventRepository
	mu     sync.Mutex
	events []models.SecurityEvent
}

func (m *mockSecurityRepo) Create(ctx context.Context, event *models.SecurityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *mockSecurityRepo) CountSince(ctx context.Context, eventType, ipAddress string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.events {
		if e.EventType == eventType && e.IPAddress == ipAddress && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockSecurityRepo) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.EventType)
	}
	return out
}

type mockPasswordResetRepo struct {
	repository.PasswordResetRepository
	mu     sync.Mutex
	resets map[uuid.UUID]models.PasswordReset
}

func newMockPasswordResetRepo() *mockPasswordResetRepo {
	return &mockPasswordResetRepo{resets: make(map[uuid.UUID]models.PasswordReset)}
}

func (m *mockPasswordResetRepo) Create(ctx context.Context, reset *models.PasswordReset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if reset.ID == uuid.Nil {
		reset.ID = uuid.New()
	}
	m.resets[reset.ID] = *reset
	return nil
}

func (m *mockPasswordResetRepo) FindUsableByHash(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resets {
		if r.TokenHash == tokenHash && r.IsUsable(now) {
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPasswordResetRepo) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resets[id]
	if !ok || r.UsedAt != nil {
		return false, nil
	}
	r.UsedAt = &at
	m.resets[id] = r
	return true, nil
}

func (m *mockPasswordResetRepo) InvalidateForEmail(ctx context.Context, email string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.resets {
		if strings.EqualFold(r.Email, email) && r.UsedAt == nil {
			r.UsedAt = &at
			m.resets[id] = r
		}
	}
	return nil
}

func (m *mockPasswordResetRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.resets {
		if r.UsedAt != nil || r.ExpiresAt.Before(now) {
			delete(m.resets, id)
			n++
		}
	}
	return n, nil
}

func (m *mockPasswordResetRepo) all() []models.PasswordReset {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PasswordReset, 0, len(m.resets))
	for _, r := range m.resets {
		out = append(out, r)
	}
	return out
}
