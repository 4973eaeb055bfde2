package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/testutil"
)

func notificationsOf(t *testing.T, f *fixture, userID string) []models.Notification {
	t.Helper()
	list, err := f.Notifications.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func TestAssignmentCreateNotifiesAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.roster(t, day(2026, 3, 1), models.ShiftMorning)

	a, err := f.Assignments.Create(ctx, services.AssignmentInput{
		DutyRosterID: r.ID, UserID: f.Staff.ID, AssignedByID: f.Supervisor.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, a.DutyRoster)
	assert.Equal(t, r.ID, a.DutyRoster.ID)
	require.NotNil(t, a.AssignedBy)
	assert.Equal(t, f.Supervisor.ID, a.AssignedBy.ID)

	inbox := notificationsOf(t, f, f.Staff.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationAssignmentCreated, inbox[0].Type)
	assert.Contains(t, string(inbox[0].Metadata), a.ID)
}

func TestAssignmentCreateChecksReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.roster(t, day(2026, 3, 1), models.ShiftMorning)

	cases := []services.AssignmentInput{
		{DutyRosterID: "missing", UserID: f.Staff.ID, AssignedByID: f.Admin.ID},
		{DutyRosterID: r.ID, UserID: "missing", AssignedByID: f.Admin.ID},
		{DutyRosterID: r.ID, UserID: f.Staff.ID, AssignedByID: "missing"},
	}
	for _, in := range cases {
		_, err := f.Assignments.Create(ctx, in)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	}
}

func TestAssignmentQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.roster(t, day(2026, 3, 1), models.ShiftMorning)

	_, err := f.Assignments.Create(ctx, services.AssignmentInput{DutyRosterID: r.ID, UserID: f.Staff.ID, AssignedByID: f.Supervisor.ID})
	require.NoError(t, err)
	_, err = f.Assignments.Create(ctx, services.AssignmentInput{DutyRosterID: r.ID, UserID: f.Admin.ID, AssignedByID: f.Admin.ID})
	require.NoError(t, err)

	all, err := f.Assignments.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.Assignments.GetByUserID(ctx, f.Staff.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].User)
	assert.Equal(t, f.Staff.Email, mine[0].User.Email)

	bySup, err := f.Assignments.GetByAssignerID(ctx, f.Supervisor.ID)
	require.NoError(t, err)
	assert.Len(t, bySup, 1)

	_, err = f.Assignments.GetByID(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestAssignmentReassignNotifiesBothUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.roster(t, day(2026, 3, 1), models.ShiftMorning)
	other := testutil.CreateUser(t, f.DB, "Other", "other@roster.com", models.RoleStaff)

	a, err := f.Assignments.Create(ctx, services.AssignmentInput{DutyRosterID: r.ID, UserID: f.Staff.ID, AssignedByID: f.Admin.ID})
	require.NoError(t, err)

	updated, err := f.Assignments.Update(ctx, a.ID, services.AssignmentUpdate{UserID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.UserID)

	staffInbox := notificationsOf(t, f, f.Staff.ID)
	require.Len(t, staffInbox, 2)
	assert.Equal(t, models.NotificationAssignmentRemoved, staffInbox[0].Type)

	otherInbox := notificationsOf(t, f, other.ID)
	require.Len(t, otherInbox, 1)
	assert.Equal(t, models.NotificationAssignmentCreated, otherInbox[0].Type)

	// same assignee, different roster
	r2 := f.roster(t, day(2026, 3, 2), models.ShiftNight)
	_, err = f.Assignments.Update(ctx, a.ID, services.AssignmentUpdate{DutyRosterID: &r2.ID})
	require.NoError(t, err)
	otherInbox = notificationsOf(t, f, other.ID)
	require.Len(t, otherInbox, 2)
	assert.Equal(t, models.NotificationAssignmentUpdated, otherInbox[0].Type)

	missing := "missing"
	_, err = f.Assignments.Update(ctx, a.ID, services.AssignmentUpdate{UserID: &missing})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestAssignmentDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.roster(t, day(2026, 3, 1), models.ShiftMorning)
	a, err := f.Assignments.Create(ctx, services.AssignmentInput{DutyRosterID: r.ID, UserID: f.Staff.ID, AssignedByID: f.Admin.ID})
	require.NoError(t, err)

	require.NoError(t, f.Assignments.Delete(ctx, a.ID))
	_, err = f.Assignments.GetByID(ctx, a.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	inbox := notificationsOf(t, f, f.Staff.ID)
	require.Len(t, inbox, 2)
	assert.Equal(t, models.NotificationAssignmentRemoved, inbox[0].Type)

	err = f.Assignments.Delete(ctx, a.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
