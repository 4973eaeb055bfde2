package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRoster(t *testing.T, s *testServer, cookie *http.Cookie, date, shift string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/dutyrosters", gin.H{"date": date, "shift": shift}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["data"].(map[string]interface{})["id"].(string)
}

func TestStaffCannotManageRosters(t *testing.T) {
	s := newTestServer(t)
	staff := s.login("staff@roster.com")
	admin := s.login("admin@roster.com")
	id := createRoster(t, s, admin, "2026-03-10", "MORNING")

	w := s.do(http.MethodPost, "/api/dutyrosters", gin.H{"date": "2026-03-10", "shift": "MORNING"}, staff)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/dutyrosters/"+id, gin.H{"shift": "NIGHT"}, staff)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/dutyrosters/"+id, nil, staff)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// reading stays open to every authenticated user
	w = s.do(http.MethodGet, "/api/dutyrosters/"+id, nil, staff)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSupervisorManagesRosters(t *testing.T) {
	s := newTestServer(t)
	sup := s.login("sup@roster.com")

	id := createRoster(t, s, sup, "2026-03-10", "evening")

	w := s.do(http.MethodGet, "/api/dutyrosters/"+id, nil, sup)
	require.Equal(t, http.StatusOK, w.Code)
	roster := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "EVENING", roster["shift"])
	assert.Equal(t, s.Supervisor.ID, roster["addedById"])

	w = s.do(http.MethodPut, "/api/dutyrosters/"+id, gin.H{"shift": "night", "date": "2026-03-11"}, sup)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "NIGHT", decode(t, w)["data"].(map[string]interface{})["shift"])

	w = s.do(http.MethodGet, "/api/dutyrosters/date/2026-03-11", nil, sup)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(http.MethodDelete, "/api/dutyrosters/"+id, nil, sup)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/dutyrosters/"+id, nil, sup)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRosterValidation(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@roster.com")

	w := s.do(http.MethodPost, "/api/dutyrosters", gin.H{"date": "2026-03-10", "shift": "LUNCH"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/dutyrosters", gin.H{"date": "tomorrow", "shift": "MORNING"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/dutyrosters/date/yesterday", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecurringRosters(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@roster.com")

	w := s.do(http.MethodPost, "/api/dutyrosters/recurring", gin.H{
		"rule":      "FREQ=WEEKLY;BYDAY=MO,FR;COUNT=4",
		"startDate": "2026-03-02",
		"shifts":    []string{"morning", "night"},
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["data"], 8)

	w = s.do(http.MethodPost, "/api/dutyrosters/recurring", gin.H{
		"rule": "FREQ=DAILY", "startDate": "2026-03-02", "shifts": []string{"MORNING"},
	}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/dutyrosters/recurring", gin.H{
		"rule": "FREQ=DAILY;COUNT=2", "startDate": "2026-03-02", "shifts": []string{"BRUNCH"},
	}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
