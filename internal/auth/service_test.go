// AngelaMos | 2026
// service_test.go

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/coursegate/internal/auth"
	"github.com/angelamos/coursegate/internal/core"
)

type memoryTokenRepo struct {
	mu     sync.Mutex
	byID   map[string]*auth.RefreshToken
	byHash map[string]*auth.RefreshToken

	revokedFamilies []string
	revokedUsers    []string
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{
		byID:   make(map[string]*auth.RefreshToken),
		byHash: make(map[string]*auth.RefreshToken),
	}
}

func (r *memoryTokenRepo) add(token *auth.RefreshToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[token.ID] = token
	r.byHash[token.TokenHash] = token
}

func (r *memoryTokenRepo) Create(
	ctx context.Context,
	token *auth.RefreshToken,
) error {
	r.add(token)
	return nil
}

func (r *memoryTokenRepo) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*auth.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.byHash[tokenHash]
	if !ok {
		return nil, core.ErrNotFound
	}
	return token, nil
}

func (r *memoryTokenRepo) FindByID(
	ctx context.Context,
	id string,
) (*auth.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return token, nil
}

func (r *memoryTokenRepo) MarkAsUsed(
	ctx context.Context,
	id, replacedByID string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	token.MarkAsUsed(replacedByID)
	return nil
}

func (r *memoryTokenRepo) RevokeByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	token.Revoke()
	return nil
}

func (r *memoryTokenRepo) RevokeByFamilyID(
	ctx context.Context,
	familyID string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revokedFamilies = append(r.revokedFamilies, familyID)
	for _, token := range r.byID {
		if token.FamilyID == familyID {
			token.Revoke()
		}
	}
	return nil
}

func (r *memoryTokenRepo) RevokeAllForUser(
	ctx context.Context,
	userID string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revokedUsers = append(r.revokedUsers, userID)
	for _, token := range r.byID {
		if token.UserID == userID {
			token.Revoke()
		}
	}
	return nil
}

func (r *memoryTokenRepo) GetActiveSessionsForUser(
	ctx context.Context,
	userID string,
) ([]auth.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sessions []auth.RefreshToken
	for _, token := range r.byID {
		if token.UserID == userID && token.IsValid() {
			sessions = append(sessions, *token)
		}
	}
	return sessions, nil
}

func (r *memoryTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

type memoryUserProvider struct {
	mu              sync.Mutex
	byID            map[string]*auth.UserInfo
	versionBumps    []string
	passwordUpdates map[string]string
}

func newMemoryUserProvider() *memoryUserProvider {
	return &memoryUserProvider{
		byID:            make(map[string]*auth.UserInfo),
		passwordUpdates: make(map[string]string),
	}
}

func (p *memoryUserProvider) add(user *auth.UserInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID[user.ID] = user
}

func (p *memoryUserProvider) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, user := range p.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, core.ErrNotFound
}

func (p *memoryUserProvider) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return user, nil
}

func (p *memoryUserProvider) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, user := range p.byID {
		if user.Email == email {
			return nil, core.ErrDuplicateKey
		}
	}
	user := &auth.UserInfo{
		ID:           "u-" + email,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         "user",
		Tier:         "free",
	}
	p.byID[user.ID] = user
	return user, nil
}

func (p *memoryUserProvider) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.versionBumps = append(p.versionBumps, userID)
	if user, ok := p.byID[userID]; ok {
		user.TokenVersion++
	}
	return nil
}

func (p *memoryUserProvider) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passwordUpdates[userID] = passwordHash
	if user, ok := p.byID[userID]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := core.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := auth.NewService(
		newMemoryTokenRepo(),
		nil,
		newMemoryUserProvider(),
		nil,
	)

	_, err := svc.Login(
		context.Background(),
		auth.LoginRequest{Email: "no@example.com", Password: "password123"},
		"", "",
	)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newMemoryUserProvider()
	users.add(&auth.UserInfo{
		ID:           "u1",
		Email:        "ada@example.com",
		PasswordHash: mustHash(t, "correct-horse-1"),
	})
	svc := auth.NewService(newMemoryTokenRepo(), nil, users, nil)

	_, err := svc.Login(
		context.Background(),
		auth.LoginRequest{Email: "ada@example.com", Password: "wrong-horse-1"},
		"", "",
	)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newMemoryUserProvider()
	users.add(&auth.UserInfo{ID: "u1", Email: "ada@example.com"})
	svc := auth.NewService(newMemoryTokenRepo(), nil, users, nil)

	_, err := svc.Register(
		context.Background(),
		auth.RegisterRequest{
			Email:    "ada@example.com",
			Password: "password123",
			Name:     "Ada",
		},
		"", "",
	)
	require.ErrorIs(t, err, auth.ErrEmailExists)
}

func TestSessionFromRefreshTokenUnknown(t *testing.T) {
	svc := auth.NewService(
		newMemoryTokenRepo(),
		nil,
		newMemoryUserProvider(),
		nil,
	)

	user, err := svc.SessionFromRefreshToken(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestSessionFromRefreshTokenExpired(t *testing.T) {
	repo := newMemoryTokenRepo()
	repo.add(&auth.RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		TokenHash: core.HashToken("stale"),
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	svc := auth.NewService(repo, nil, newMemoryUserProvider(), nil)

	user, err := svc.SessionFromRefreshToken(context.Background(), "stale")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestSessionFromRefreshTokenValid(t *testing.T) {
	repo := newMemoryTokenRepo()
	repo.add(&auth.RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		TokenHash: core.HashToken("fresh"),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	users := newMemoryUserProvider()
	users.add(&auth.UserInfo{ID: "u1", Email: "ada@example.com"})
	svc := auth.NewService(repo, nil, users, nil)

	user, err := svc.SessionFromRefreshToken(context.Background(), "fresh")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, "ada@example.com", user.Email)
}

func TestLogoutOtherUsersToken(t *testing.T) {
	repo := newMemoryTokenRepo()
	repo.add(&auth.RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		TokenHash: core.HashToken("theirs"),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	svc := auth.NewService(repo, nil, newMemoryUserProvider(), nil)

	err := svc.Logout(context.Background(), "theirs", "u2")
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestLogoutUnknownTokenIsNoop(t *testing.T) {
	svc := auth.NewService(
		newMemoryTokenRepo(),
		nil,
		newMemoryUserProvider(),
		nil,
	)

	require.NoError(t, svc.Logout(context.Background(), "gone", "u1"))
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	users := newMemoryUserProvider()
	users.add(&auth.UserInfo{
		ID:           "u1",
		Email:        "ada@example.com",
		PasswordHash: mustHash(t, "correct-horse-1"),
	})
	svc := auth.NewService(newMemoryTokenRepo(), nil, users, nil)

	err := svc.ChangePassword(
		context.Background(),
		"u1",
		"wrong-horse-1",
		"new-password-1",
	)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	require.Empty(t, users.passwordUpdates)
}

func TestChangePasswordRevokesAllSessions(t *testing.T) {
	users := newMemoryUserProvider()
	users.add(&auth.UserInfo{
		ID:           "u1",
		Email:        "ada@example.com",
		PasswordHash: mustHash(t, "correct-horse-1"),
	})
	repo := newMemoryTokenRepo()
	repo.add(&auth.RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		TokenHash: core.HashToken("live"),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	svc := auth.NewService(repo, nil, users, nil)

	err := svc.ChangePassword(
		context.Background(),
		"u1",
		"correct-horse-1",
		"new-password-1",
	)
	require.NoError(t, err)
	require.Contains(t, users.passwordUpdates, "u1")
	require.Contains(t, repo.revokedUsers, "u1")
	require.Contains(t, users.versionBumps, "u1")
}

func TestValidateTokenVersionStale(t *testing.T) {
	users := newMemoryUserProvider()
	users.add(&auth.UserInfo{ID: "u1", TokenVersion: 3})
	svc := auth.NewService(newMemoryTokenRepo(), nil, users, nil)

	err := svc.ValidateTokenVersion(context.Background(), "u1", 2)
	require.ErrorIs(t, err, core.ErrTokenRevoked)

	require.NoError(t, svc.ValidateTokenVersion(context.Background(), "u1", 3))
}
