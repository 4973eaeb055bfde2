package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/sessions"
	"github.com/yeremiapane/duty-roster/testutil"
	"github.com/yeremiapane/duty-roster/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type emitted struct {
	Scope  string
	Target string
	Event  string
	Data   interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recordingEmitter) EmitToUser(userID, event string, data interface{}) {
	r.add(emitted{"user", userID, event, data})
}

func (r *recordingEmitter) EmitToAll(event string, data interface{}) {
	r.add(emitted{"all", "", event, data})
}

func (r *recordingEmitter) add(e emitted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) Events() []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emitted(nil), r.events...)
}

type fixture struct {
	DB            *gorm.DB
	Emitter       *recordingEmitter
	Sessions      *sessions.GormStore
	Users         *services.UserService
	Auth          *services.AuthService
	Notifications *services.NotificationService
	Rosters       *services.DutyRosterService
	Assignments   *services.AssignmentService

	Admin      models.User
	Supervisor models.User
	Staff      models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	em := &recordingEmitter{}
	store := sessions.NewGormStore(db, time.Hour)

	users := services.NewUserService(db, store)
	users.BcryptCost = bcrypt.MinCost
	notifications := services.NewNotificationService(db, em)

	f := &fixture{
		DB:            db,
		Emitter:       em,
		Sessions:      store,
		Users:         users,
		Auth:          services.NewAuthService(users, store, utils.NewTokenSigner("test-secret", time.Hour)),
		Notifications: notifications,
		Rosters:       services.NewDutyRosterService(db, em),
		Assignments:   services.NewAssignmentService(db, notifications),
	}
	f.Admin = testutil.CreateUser(t, db, "Admin", "admin@roster.com", models.RoleAdmin)
	f.Supervisor = testutil.CreateUser(t, db, "Sup", "sup@roster.com", models.RoleSupervisor)
	f.Staff = testutil.CreateUser(t, db, "Staff", "staff@roster.com", models.RoleStaff)
	return f
}

func (f *fixture) roster(t *testing.T, date time.Time, shift models.Shift) *models.DutyRoster {
	t.Helper()
	r, err := f.Rosters.Create(context.Background(), f.Admin.ID, services.RosterInput{Date: date, Shift: shift})
	require.NoError(t, err)
	return r
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := utils.AsApiError(err)
	require.True(t, ok, "expected ApiError, got %v", err)
	return apiErr.StatusCode
}
