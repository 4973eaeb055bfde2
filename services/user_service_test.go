package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/services"
	"golang.org/x/crypto/bcrypt"
)

func TestUserCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.Users.Create(ctx, services.CreateUserInput{
		Name: " Bob ", Email: "Bob@Roster.com", Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob", user.Name)
	assert.Equal(t, "bob@roster.com", user.Email)
	assert.Equal(t, models.RoleStaff, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret")))

	_, err = f.Users.Create(ctx, services.CreateUserInput{Name: "Again", Email: "bob@roster.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, "User already exist!", err.Error())

	_, err = f.Users.Create(ctx, services.CreateUserInput{Name: "Bad", Email: "bad@roster.com", Password: "x", Role: "OWNER"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestUserLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.Users.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := f.Users.GetByID(ctx, f.Staff.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Staff.Email, got.Email)

	_, err = f.Users.GetByID(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	none, err := f.Users.FindByEmail(ctx, "nobody@roster.com")
	require.NoError(t, err)
	assert.Nil(t, none)

	sups, err := f.Users.GetByRole(ctx, models.RoleSupervisor)
	require.NoError(t, err)
	require.Len(t, sups, 1)
	assert.Equal(t, f.Supervisor.ID, sups[0].ID)
}

func TestUserDeleteRestrictedWhileOwningRosters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.roster(t, day(2026, 3, 1), models.ShiftMorning)

	err := f.Users.Delete(ctx, f.Admin.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	_, err = f.Users.GetByID(ctx, f.Admin.ID)
	assert.NoError(t, err)
}

func TestUserDeleteCascadesOwnRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.roster(t, day(2026, 3, 1), models.ShiftMorning)

	_, err := f.Assignments.Create(ctx, services.AssignmentInput{
		DutyRosterID: r.ID, UserID: f.Staff.ID, AssignedByID: f.Supervisor.ID,
	})
	require.NoError(t, err)
	token, _, err := f.Sessions.Create(ctx, f.Staff)
	require.NoError(t, err)

	require.NoError(t, f.Users.Delete(ctx, f.Staff.ID))

	var n int64
	f.DB.Model(&models.Assignment{}).Where("user_id = ?", f.Staff.ID).Count(&n)
	assert.Zero(t, n)
	f.DB.Model(&models.Notification{}).Where("user_id = ?", f.Staff.ID).Count(&n)
	assert.Zero(t, n)
	_, err = f.Sessions.Resolve(ctx, token)
	assert.Error(t, err)

	err = f.Users.Delete(ctx, f.Staff.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
