package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/testutil"
)

func TestNotificationRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@roster.com")
	staff := s.login("staff@roster.com")

	w := s.do(http.MethodPost, "/api/notifications", gin.H{"userId": s.Staff.ID, "title": "Hi", "message": "there"}, staff)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/notifications", gin.H{
		"userId": s.Staff.ID, "title": "Hi", "message": "there", "metadata": gin.H{"source": "test"},
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	n := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, n["read"])
	assert.Equal(t, "SYSTEM_ANNOUNCEMENT", n["type"])
	id := n["id"].(string)

	w = s.do(http.MethodGet, "/api/notifications/user/"+s.Staff.ID, nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(http.MethodGet, "/api/notifications/user/"+s.Admin.ID, nil, staff)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/notifications", nil, staff)
	assert.Equal(t, http.StatusForbidden, w.Code)

	for i := 0; i < 2; i++ {
		w = s.do(http.MethodPost, "/api/notifications/read/"+id, nil, staff)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["data"].(map[string]interface{})["read"])
	}

	w = s.do(http.MethodPost, "/api/notifications/read/missing", nil, staff)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAsReadOfOthersNeedsCapability(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@roster.com")
	other := testutil.CreateUser(t, s.DB, "Other", "other@roster.com", models.RoleStaff)

	w := s.do(http.MethodPost, "/api/notifications", gin.H{"userId": other.ID, "title": "a", "message": "b"}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["data"].(map[string]interface{})["id"].(string)

	staff := s.login("staff@roster.com")
	w = s.do(http.MethodPost, "/api/notifications/read/"+id, nil, staff)
	assert.Equal(t, http.StatusForbidden, w.Code)

	sup := s.login("sup@roster.com")
	w = s.do(http.MethodPost, "/api/notifications/read/"+id, nil, sup)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleAndBroadcastNotifications(t *testing.T) {
	s := newTestServer(t)
	sup := s.login("sup@roster.com")
	admin := s.login("admin@roster.com")

	w := s.do(http.MethodPost, "/api/notifications/role/staff", gin.H{"title": "Shift swap", "message": "Check roster"}, sup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	list := decode(t, w)["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, s.Staff.ID, list[0].(map[string]interface{})["userId"])

	w = s.do(http.MethodPost, "/api/notifications/role/chef", gin.H{"title": "a", "message": "b"}, sup)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/notifications/broadcast", gin.H{"title": "Maintenance", "message": "Sunday"}, sup)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/notifications/broadcast", gin.H{"title": "Maintenance", "message": "Sunday"}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, decode(t, w)["data"], 3)

	w = s.do(http.MethodGet, "/api/notifications", nil, sup)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 4)
}
