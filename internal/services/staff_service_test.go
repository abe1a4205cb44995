package services

import (
	"context"
	"testing"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/repositories"
	"github.com/doujindesk/doujindesk-api/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newStaffService(t *testing.T) *StaffService {
	t.Helper()
	cfg := &auth.JWTConfig{Secret: "test-secret", Issuer: "doujindesk", ExpirationTime: time.Hour}
	s := NewStaffService(repositories.NewStaffRepository(repositories.NopPersister{}, discardLogger()), cfg, discardLogger())
	s.hashCost = bcrypt.MinCost
	return s
}

func registerGate(t *testing.T, s *StaffService) *models.Staff {
	t.Helper()
	staff, err := s.Register(context.Background(), &RegisterStaffInput{
		Name:     "Kenji",
		Email:    "Kenji@Example.com",
		Passcode: "sakura123",
		Role:     models.StaffRoleGate,
		Gate:     "gate-a",
	})
	require.NoError(t, err)
	return staff
}

func TestStaff_RegisterAndLogin(t *testing.T) {
	s := newStaffService(t)
	ctx := context.Background()

	staff := registerGate(t, s)
	assert.Contains(t, staff.ID, StaffIDPrefix+"-")
	assert.Equal(t, "kenji@example.com", staff.Email)
	assert.True(t, staff.Active)
	assert.NotEqual(t, "sakura123", staff.PasscodeHash)

	result, err := s.Login(ctx, &LoginInput{Email: "kenji@example.com", Passcode: "sakura123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, staff.ID, result.Staff.ID)

	claims, err := s.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, claims.StaffID)
	assert.Equal(t, "gate", claims.Role)
	assert.Equal(t, "gate-a", claims.Gate)
}

func TestStaff_DuplicateEmail(t *testing.T) {
	s := newStaffService(t)
	registerGate(t, s)

	_, err := s.Register(context.Background(), &RegisterStaffInput{
		Name: "Other", Email: "kenji@example.com", Passcode: "another1", Role: models.StaffRoleAdmin,
	})
	assert.ErrorIs(t, err, models.ErrStaffExists)
}

func TestStaff_RegisterValidation(t *testing.T) {
	s := newStaffService(t)

	_, err := s.Register(context.Background(), &RegisterStaffInput{
		Name: "Short", Email: "short@example.com", Passcode: "123", Role: "janitor",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "passcode")
	assert.Contains(t, appErr.Fields, "role")
}

func TestStaff_LoginFailures(t *testing.T) {
	s := newStaffService(t)
	ctx := context.Background()
	staff := registerGate(t, s)

	_, err := s.Login(ctx, &LoginInput{Email: "kenji@example.com", Passcode: "wrong-pass"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = s.Login(ctx, &LoginInput{Email: "nobody@example.com", Passcode: "sakura123"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = s.SetActive(ctx, staff.ID, false)
	require.NoError(t, err)

	_, err = s.Login(ctx, &LoginInput{Email: "kenji@example.com", Passcode: "sakura123"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestStaff_DeactivationRevokesToken(t *testing.T) {
	s := newStaffService(t)
	ctx := context.Background()
	staff := registerGate(t, s)

	result, err := s.Login(ctx, &LoginInput{Email: "kenji@example.com", Passcode: "sakura123"})
	require.NoError(t, err)

	_, err = s.SetActive(ctx, staff.ID, false)
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, result.Token)
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))

	_, err = s.Authenticate(ctx, "garbage")
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))
}

func TestStaff_List(t *testing.T) {
	s := newStaffService(t)
	registerGate(t, s)

	assert.Len(t, s.List(context.Background()), 1)

	_, err := s.FindByID(context.Background(), "STF-missing")
	assert.True(t, models.IsNotFound(err))
}

func TestStaff_EnsureAdmin(t *testing.T) {
	s := newStaffService(t)
	ctx := context.Background()
	input := &RegisterStaffInput{Name: "Admin", Email: "admin@doujindesk.id", Passcode: "bootstrap-pass"}

	created, err := s.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	assert.True(t, created)

	staff := s.List(ctx)
	require.Len(t, staff, 1)
	assert.Equal(t, models.StaffRoleAdmin, staff[0].Role)

	created, err = s.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)
}
