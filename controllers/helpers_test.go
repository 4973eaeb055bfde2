package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/duty-roster/config"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/realtime"
	"github.com/yeremiapane/duty-roster/router"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/sessions"
	"github.com/yeremiapane/duty-roster/storage"
	"github.com/yeremiapane/duty-roster/testutil"
	"github.com/yeremiapane/duty-roster/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger("panic", false)
}

type testServer struct {
	t      *testing.T
	Router *gin.Engine
	DB     *gorm.DB
	Hub    *realtime.Hub
	Config *config.Config

	Admin      models.User
	Supervisor models.User
	Staff      models.User
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Session.CookieName = "roster.sid"
	cfg.Session.TTL = time.Hour
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = time.Hour
	cfg.CORS.Origin = "http://localhost:5173"
	cfg.Upload.Provider = "local"
	cfg.Upload.Dir = t.TempDir()
	cfg.Upload.MaxBytes = 1 << 20
	cfg.RateLimit.AuthPerMinute = 1000
	return cfg
}

func newTestServer(t *testing.T, tweak ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := testConfig(t)
	for _, f := range tweak {
		f(cfg)
	}

	db := testutil.NewDB(t)
	hub := realtime.NewHub()
	store := sessions.NewGormStore(db, cfg.Session.TTL)
	provider, err := storage.NewLocalProvider(cfg.Upload.Dir, "/uploads")
	require.NoError(t, err)

	users := services.NewUserService(db, store)
	users.BcryptCost = bcrypt.MinCost
	notifications := services.NewNotificationService(db, hub)

	r := router.SetupRouter(router.Deps{
		Config:        cfg,
		DB:            db,
		Sessions:      store,
		Hub:           hub,
		Users:         users,
		Auth:          services.NewAuthService(users, store, utils.NewTokenSigner(cfg.JWT.Secret, cfg.JWT.TTL)),
		Rosters:       services.NewDutyRosterService(db, hub),
		Assignments:   services.NewAssignmentService(db, notifications),
		Notifications: notifications,
		Uploads:       services.NewUploadService(provider, cfg.Upload.MaxBytes),
	})

	return &testServer{
		t:          t,
		Router:     r,
		DB:         db,
		Hub:        hub,
		Config:     cfg,
		Admin:      testutil.CreateUser(t, db, "Admin", "admin@roster.com", models.RoleAdmin),
		Supervisor: testutil.CreateUser(t, db, "Sup", "sup@roster.com", models.RoleSupervisor),
		Staff:      testutil.CreateUser(t, db, "Staff", "staff@roster.com", models.RoleStaff),
	}
}

func (s *testServer) do(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

// login returns the session cookie for email.
func (s *testServer) login(email string) *http.Cookie {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": testutil.Password}, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == s.Config.Session.CookieName {
			return c
		}
	}
	s.t.Fatalf("no session cookie in login response")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
