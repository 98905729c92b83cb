package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type mockUserAdminRepo struct {
	users     map[string]*models.User
	setActive map[string]bool
}

func (m *mockUserAdminRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserAdminRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	result := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		result = append(result, *user)
	}
	return result, len(result), nil
}

func (m *mockUserAdminRepo) SetActive(ctx context.Context, id string, active bool) error {
	if m.setActive == nil {
		m.setActive = make(map[string]bool)
	}
	m.setActive[id] = active
	return nil
}

func TestSetActiveRejectsSelfDeactivation(t *testing.T) {
	repo := &mockUserAdminRepo{users: map[string]*models.User{
		"admin1": {ID: "admin1", Email: "admin@example.com", Role: models.RoleAdmin, Active: true},
	}}
	svc := NewUserService(repo, &mockActivity{}, zap.NewNop())

	_, err := svc.SetActive(context.Background(), "admin1", "admin1", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.setActive)
}

func TestSetActiveDeactivatesOtherAccount(t *testing.T) {
	repo := &mockUserAdminRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "teacher@example.com", Role: models.RoleTeacher, Active: true},
	}}
	activity := &mockActivity{}
	svc := NewUserService(repo, activity, zap.NewNop())

	user, err := svc.SetActive(context.Background(), "admin1", "u1", false)
	require.NoError(t, err)
	assert.False(t, user.Active)
	assert.False(t, repo.setActive["u1"])
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityAdmin, activity.entries[0].Type)
}

func TestSetActiveReactivatingSelfAllowed(t *testing.T) {
	repo := &mockUserAdminRepo{users: map[string]*models.User{
		"admin1": {ID: "admin1", Email: "admin@example.com", Role: models.RoleAdmin, Active: false},
	}}
	svc := NewUserService(repo, &mockActivity{}, zap.NewNop())

	user, err := svc.SetActive(context.Background(), "admin1", "admin1", true)
	require.NoError(t, err)
	assert.True(t, user.Active)
}

func TestSetActiveUnknownUser(t *testing.T) {
	repo := &mockUserAdminRepo{users: map[string]*models.User{}}
	svc := NewUserService(repo, &mockActivity{}, zap.NewNop())

	_, err := svc.SetActive(context.Background(), "admin1", "ghost", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
