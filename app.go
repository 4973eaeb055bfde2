package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/duty-roster/config"
	"github.com/yeremiapane/duty-roster/realtime"
	"github.com/yeremiapane/duty-roster/router"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/sessions"
	"github.com/yeremiapane/duty-roster/storage"
	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/gorm"
)

// App holds the wired services for one server process.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Sessions sessions.Store
	Hub      *realtime.Hub
	Reminder *services.ReminderMonitor
	Deps     router.Deps
}

func newApp(cfg *config.Config, db *gorm.DB) (*App, error) {
	a := &App{Config: cfg, DB: db, Hub: realtime.NewHub()}

	if cfg.Session.Store == "redis" || cfg.Realtime.Relay {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	if cfg.Session.Store == "redis" {
		a.Sessions = sessions.NewRedisStore(a.Redis, cfg.Session.TTL)
	} else {
		a.Sessions = sessions.NewGormStore(db, cfg.Session.TTL)
	}
	if cfg.Realtime.Relay {
		a.Hub.UseRelay(realtime.NewRedisRelay(a.Redis))
	}

	provider, err := storage.New(cfg.Upload)
	if err != nil {
		return nil, err
	}

	users := services.NewUserService(db, a.Sessions)
	notifications := services.NewNotificationService(db, a.Hub)
	assignments := services.NewAssignmentService(db, notifications)
	a.Reminder = services.NewReminderMonitor(assignments, notifications, cfg.Reminder.Interval, cfg.Reminder.Lead)

	a.Deps = router.Deps{
		Config:        cfg,
		DB:            db,
		Sessions:      a.Sessions,
		Hub:           a.Hub,
		Users:         users,
		Auth:          services.NewAuthService(users, a.Sessions, utils.NewTokenSigner(cfg.JWT.Secret, cfg.JWT.TTL)),
		Rosters:       services.NewDutyRosterService(db, a.Hub),
		Assignments:   assignments,
		Notifications: notifications,
		Uploads:       services.NewUploadService(provider, cfg.Upload.MaxBytes),
	}
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return router.SetupRouter(a.Deps)
}

// Start launches the background work: relay subscription, reminders and
// the expired-session sweep.
func (a *App) Start(ctx context.Context) {
	a.Hub.Start(ctx)
	if a.Config.Reminder.Enabled {
		a.Reminder.Start(ctx)
	}
	if store, ok := a.Sessions.(*sessions.GormStore); ok {
		go sweepSessions(ctx, store, time.Hour)
	}
}

func (a *App) Close() {
	a.Reminder.Stop()
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

func sweepSessions(ctx context.Context, store *sessions.GormStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				utils.ErrorLogger.Errorf("purge sessions: %v", err)
			} else if n > 0 {
				utils.InfoLogger.Printf("Purged %d expired sessions", n)
			}
		}
	}
}
