package service

import (
	"context"
	"testing"
	"time"

	"lms_backend/internal/testutil"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBlacklist map[string]time.Duration

func (m memoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m[jti] = ttl
	return nil
}

func (m memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m[jti]
	return ok, nil
}

func TestRegisterAndLogin(t *testing.T) {
	s := newServices(t)

	_, _, err := s.auth.Register(RegisterInput{Username: "ann", Password: "pw-123456", PasswordConfirm: "other"})
	assert.ErrorIs(t, err, util.ErrPasswordMismatch)

	user, token, err := s.auth.Register(RegisterInput{
		Username: "ann", Email: "ann@example.com", Password: "pw-123456", PasswordConfirm: "pw-123456",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, user.IsStudent)
	assert.False(t, user.IsInstructor)
	assert.False(t, user.IsStaff)

	_, _, err = s.auth.Register(RegisterInput{Username: "ann", Password: "x", PasswordConfirm: "x"})
	assert.ErrorIs(t, err, util.ErrUsernameTaken)

	_, _, err = s.auth.Login("ann", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, _, err = s.auth.Login("nobody", "pw-123456")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	logged, token, err := s.auth.Login("ann", "pw-123456")
	require.NoError(t, err)
	assert.NotNil(t, logged.LastLogin)

	claims, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	s := newServices(t)
	u := testutil.CreateStudent(t, s.db, "idle")
	require.NoError(t, s.db.Model(u).Update("is_active", false).Error)

	_, _, err := s.auth.Login("idle", testutil.Password)
	assert.ErrorIs(t, err, util.ErrAccountDisabled)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newServices(t)
	bl := memoryBlacklist{}
	s.auth.Blacklist = bl
	u := testutil.CreateStudent(t, s.db, "ann")

	_, claims, err := util.GenerateJWT(u, "test-secret", time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.auth.Logout(context.Background(), claims))

	revoked, err := s.auth.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Greater(t, bl[claims.ID], time.Duration(0))
}

func TestInstructorAdministration(t *testing.T) {
	s := newServices(t)
	admin := testutil.CreateAdmin(t, s.db, "admin")

	inst, err := s.users.CreateInstructor(InstructorInput{Username: "zed", Email: "zed@example.com", Password: "pw-123456"})
	require.NoError(t, err)
	assert.True(t, inst.IsInstructor)
	assert.False(t, inst.IsStudent)
	_, err = s.users.CreateInstructor(InstructorInput{Username: "amy", Password: "pw-123456"})
	require.NoError(t, err)

	list, err := s.users.ListInstructors()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "amy", list[0].Username)

	_, err = s.users.UpdateInstructor(inst.ID, InstructorUpdate{Username: ptr("amy")})
	assert.ErrorIs(t, err, util.ErrUsernameTaken)

	updated, err := s.users.UpdateInstructor(inst.ID, InstructorUpdate{FirstName: ptr("Zed"), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Zed", updated.FirstName)
	assert.False(t, updated.IsActive)

	assert.ErrorIs(t, s.users.DeleteInstructor(nil, inst.ID), util.ErrPermissionDenied)
	assert.ErrorIs(t, s.users.DeleteInstructor(inst, inst.ID), util.ErrPermissionDenied)
	assert.ErrorIs(t, s.users.DeleteInstructor(admin, admin.ID), util.ErrCannotDeleteSelf)
	assert.ErrorIs(t, s.users.DeleteInstructor(admin, admin.ID+100), util.ErrNotFound)

	testutil.CreateCourse(t, s.db, inst, "zed-course", true)
	require.NoError(t, s.users.DeleteInstructor(admin, inst.ID))
	_, err = s.users.GetInstructor(inst.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
