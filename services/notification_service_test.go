package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/realtime"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/testutil"
)

func TestCreateNotificationPushesToRecipientOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.Notifications.Create(ctx, f.Staff.ID, services.NotificationInput{
		Title: "Hello", Message: "World", Metadata: json.RawMessage(`{"k":1}`),
	})
	require.NoError(t, err)
	assert.False(t, n.Read)
	assert.Equal(t, models.NotificationSystemAnnouncement, n.Type)

	var stored []models.Notification
	require.NoError(t, f.DB.Where("user_id = ?", f.Staff.ID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Read)
	assert.JSONEq(t, `{"k":1}`, string(stored[0].Metadata))

	events := f.Emitter.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "user", events[0].Scope)
	assert.Equal(t, f.Staff.ID, events[0].Target)
	assert.Equal(t, realtime.EventNotification, events[0].Event)
}

func TestCreateNotificationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.Notifications.Create(ctx, "nobody", services.NotificationInput{Title: "a", Message: "b"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	_, err = f.Notifications.Create(ctx, f.Staff.ID, services.NotificationInput{Title: "a", Message: "b", Type: "GOSSIP"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = f.Notifications.Create(ctx, f.Staff.ID, services.NotificationInput{Title: "a", Message: "b", Metadata: json.RawMessage(`{`)})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Empty(t, f.Emitter.Events())
}

func TestCreateForRoleOneRecordPerHolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	second := testutil.CreateUser(t, f.DB, "Sup2", "sup2@roster.com", models.RoleSupervisor)

	records, err := f.Notifications.CreateForRole(ctx, models.RoleSupervisor, services.NotificationInput{
		Title: "Meeting", Message: "10am",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	recipients := map[string]bool{}
	for _, r := range records {
		recipients[r.UserID] = true
	}
	assert.True(t, recipients[f.Supervisor.ID])
	assert.True(t, recipients[second.ID])

	events := f.Emitter.Events()
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, "user", e.Scope)
		n := e.Data.(models.Notification)
		assert.Equal(t, e.Target, n.UserID)
	}

	_, err = f.Notifications.CreateForRole(ctx, "OWNER", services.NotificationInput{Title: "a", Message: "b"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestBroadcastStoresForEveryoneAndEmitsOnce(t *testing.T) {
	f := newFixture(t)
	records, err := f.Notifications.Broadcast(context.Background(), services.NotificationInput{
		Title: "Maintenance", Message: "Sunday",
	})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	events := f.Emitter.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "all", events[0].Scope)
	assert.Equal(t, realtime.EventNotification, events[0].Event)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n, err := f.Notifications.Create(ctx, f.Staff.ID, services.NotificationInput{Title: "a", Message: "b"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := f.Notifications.MarkAsRead(ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, got.Read)

		stored, err := f.Notifications.GetByID(ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, stored.Read)
	}

	events := f.Emitter.Events()
	require.Len(t, events, 3)
	assert.Equal(t, realtime.EventReadNotification, events[1].Event)
	assert.Equal(t, realtime.EventReadNotification, events[2].Event)
	assert.Equal(t, f.Staff.ID, events[2].Target)

	_, err = f.Notifications.MarkAsRead(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestGetByUserIDNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, title := range []string{"first", "second"} {
		_, err := f.Notifications.Create(ctx, f.Staff.ID, services.NotificationInput{Title: title, Message: "m"})
		require.NoError(t, err)
	}
	_, err := f.Notifications.Create(ctx, f.Admin.ID, services.NotificationInput{Title: "other", Message: "m"})
	require.NoError(t, err)

	list, err := f.Notifications.GetByUserID(ctx, f.Staff.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)

	all, err := f.Notifications.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
