package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type mockAuthRepo struct {
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	resetTokens   map[string]*models.PasswordResetToken

	createdUser      *models.User
	revokedTokenIDs  []string
	revokedAllFor    []string
	updatedPasswords map[string]string
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:            make(map[string]*models.User),
		refreshTokens:    make(map[string]*models.RefreshToken),
		resetTokens:      make(map[string]*models.PasswordResetToken),
		updatedPasswords: make(map[string]string),
	}
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "u-new"
	m.users[user.ID] = user
	m.createdUser = user
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.updatedPasswords[id] = passwordHash
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAllFor = append(m.revokedAllFor, userID)
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revokedTokenIDs = append(m.revokedTokenIDs, id)
	for _, stored := range m.refreshTokens {
		if stored.ID == id {
			stored.Revoked = true
			stored.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	m.resetTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindPasswordResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	stored, ok := m.resetTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (m *mockAuthRepo) MarkPasswordResetTokenUsed(ctx context.Context, id string, usedAt time.Time) error {
	for _, stored := range m.resetTokens {
		if stored.ID == id {
			stored.UsedAt = &usedAt
		}
	}
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret-key",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		ResetTokenExpiry:   30 * time.Minute,
		Issuer:             "school-portal-api",
		Audience:           []string{"school-portal-web"},
	}
}

func seedUser(t *testing.T, repo *mockAuthRepo, id, email, password string, role models.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		Role:         role,
		Active:       active,
	}
	repo.users[id] = user
	return user
}

func TestLoginSuccess(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	activity := &mockActivity{}
	svc := NewAuthService(repo, activity, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityAuth, activity.entries[0].Type)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, false)
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "password123"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
	assert.Equal(t, 403, appErr.Status)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "taken@example.com", "password123", models.RoleStudent, true)
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
		FullName: "Twin",
		Role:     models.RoleStudent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.createdUser)
}

func TestRegisterIssuesSession(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
		FullName: "New Student",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, repo.createdUser)
	assert.True(t, repo.createdUser.Active)
	assert.NotEqual(t, "password123", repo.createdUser.PasswordHash)
}

func TestRefreshTokenRotation(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	repo.refreshTokens["old-token"] = &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Contains(t, repo.revokedTokenIDs, "rt1")

	// The used token no longer works.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenExpired(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	repo.refreshTokens["stale"] = &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	repo := newMockAuthRepo()
	repo.refreshTokens["their-token"] = &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u2",
		Token:     "their-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.Logout(context.Background(), "their-token", "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.revokedTokenIDs)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.revokedAllFor, "u1")
	assert.NotEmpty(t, repo.updatedPasswords["u1"])
}

func TestChangePasswordOldMismatch(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpassword",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updatedPasswords)
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Empty(t, repo.resetTokens)
}

func TestForgotPasswordIssuesToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "teacher@example.com"})
	require.NoError(t, err)
	require.Len(t, repo.resetTokens, 1)
	for _, token := range repo.resetTokens {
		assert.Equal(t, "u1", token.UserID)
		assert.True(t, token.ExpiresAt.After(time.Now().UTC()))
	}
}

func TestResetPasswordSingleUse(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	repo.resetTokens["reset-1"] = &models.PasswordResetToken{
		ID:        "pr1",
		UserID:    "u1",
		Token:     "reset-1",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: "reset-1", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.Contains(t, repo.revokedAllFor, "u1")
	assert.NotEmpty(t, repo.updatedPasswords["u1"])

	err = svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: "reset-1", NewPassword: "another"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	repo.resetTokens["reset-1"] = &models.PasswordResetToken{
		ID:        "pr1",
		UserID:    "u1",
		Token:     "reset-1",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: "reset-1", NewPassword: "newpassword"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updatedPasswords)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := newMockAuthRepo()
	user := seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	svc := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	signed, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	repo := newMockAuthRepo()
	user := seedUser(t, repo, "u1", "teacher@example.com", "password123", models.RoleTeacher, true)
	issuer := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), testAuthConfig())

	signed, _, err := issuer.generateAccessToken(user)
	require.NoError(t, err)

	otherConfig := testAuthConfig()
	otherConfig.AccessTokenSecret = "different-secret"
	verifier := NewAuthService(repo, &mockActivity{}, validator.New(), zap.NewNop(), otherConfig)

	_, err = verifier.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
