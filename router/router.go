package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/duty-roster/config"
	"github.com/yeremiapane/duty-roster/controllers"
	"github.com/yeremiapane/duty-roster/middlewares"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/realtime"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/sessions"
	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Config        *config.Config
	DB            *gorm.DB
	Sessions      sessions.Store
	Hub           *realtime.Hub
	Users         *services.UserService
	Auth          *services.AuthService
	Rosters       *services.DutyRosterService
	Assignments   *services.AssignmentService
	Notifications *services.NotificationService
	Uploads       *services.UploadService
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	utils.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.Metrics())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders(cfg.Session.Secure))
	r.Use(middlewares.CORSMiddlewares(cfg.CORS.Origin))
	r.Use(middlewares.ErrorHandler(cfg.IsDevelopment()))

	cookie := middlewares.CookieConfig{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	}
	authenticate := middlewares.Authenticate(d.Sessions, cookie)
	can := middlewares.RequireCapability

	authCtrl := controllers.NewAuthController(d.Auth, cookie)
	userCtrl := controllers.NewUserController(d.Users)
	rosterCtrl := controllers.NewDutyRosterController(d.Rosters)
	assignmentCtrl := controllers.NewAssignmentController(d.Assignments)
	notificationCtrl := controllers.NewNotificationController(d.Notifications)
	uploadCtrl := controllers.NewUploadController(d.Uploads)
	socketCtrl := controllers.NewSocketController(d.Hub, d.Users, d.Notifications, cfg.CORS.Origin)

	r.GET("/health", func(c *gin.Context) {
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "duty-roster"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Upload.Provider == "" || cfg.Upload.Provider == "local" {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	api := r.Group("/api")

	limiter := middlewares.NewRateLimiter(cfg.RateLimit.AuthPerMinute)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limiter.RateLimit(), authCtrl.Register)
		authGroup.POST("/login", limiter.RateLimit(), authCtrl.Login)
		authGroup.POST("/logout", middlewares.OptionalSession(d.Sessions, cookie), authCtrl.Logout)
		authGroup.GET("/me", authenticate, authCtrl.Me)
	}

	users := api.Group("/users", authenticate)
	{
		users.GET("", userCtrl.GetAllUsers)
		users.GET("/:id", userCtrl.GetUserByID)
		users.POST("", can(models.CapManageUsers), userCtrl.CreateUser)
		users.DELETE("/:id", can(models.CapManageUsers), userCtrl.DeleteUser)
	}

	rosters := api.Group("/dutyrosters", authenticate)
	{
		rosters.GET("", rosterCtrl.GetAllRosters)
		rosters.GET("/:id", rosterCtrl.GetRosterByID)
		rosters.GET("/user/:userId", rosterCtrl.GetUserRosters)
		rosters.GET("/date/:date", rosterCtrl.GetRostersByDate)
		rosters.POST("", can(models.CapManageRosters), rosterCtrl.CreateRoster)
		rosters.POST("/recurring", can(models.CapManageRosters), rosterCtrl.CreateRecurringRosters)
		rosters.PUT("/:id", can(models.CapManageRosters), rosterCtrl.UpdateRoster)
		rosters.DELETE("/:id", can(models.CapManageRosters), rosterCtrl.DeleteRoster)
	}

	assignments := api.Group("/assignments", authenticate)
	{
		assignments.GET("", assignmentCtrl.GetAllAssignments)
		assignments.GET("/:id", assignmentCtrl.GetAssignmentByID)
		assignments.GET("/user/:userId", assignmentCtrl.GetUserAssignments)
		assignments.GET("/assigner/:assignedById", assignmentCtrl.GetAssignerAssignments)
		assignments.POST("", can(models.CapManageAssignments), assignmentCtrl.CreateAssignment)
		assignments.PUT("/:id", can(models.CapManageAssignments), assignmentCtrl.UpdateAssignment)
		assignments.DELETE("/:id", can(models.CapManageAssignments), assignmentCtrl.DeleteAssignment)
	}

	notifications := api.Group("/notifications", authenticate)
	{
		notifications.GET("", can(models.CapViewAnyInbox), notificationCtrl.GetAllNotifications)
		notifications.POST("", can(models.CapManageNotifications), notificationCtrl.CreateNotification)
		notifications.POST("/role/:role", can(models.CapManageNotifications), notificationCtrl.CreateRoleNotification)
		notifications.POST("/broadcast", can(models.CapBroadcast), notificationCtrl.Broadcast)
		notifications.GET("/user/:userId", middlewares.RequireSelfOr("userId", models.CapViewAnyInbox), notificationCtrl.GetUserNotifications)
		notifications.POST("/read/:id", notificationCtrl.MarkAsRead)
	}

	api.POST("/upload", authenticate, uploadCtrl.Upload)
	api.GET("/ws", middlewares.WebSocketAuth(d.Sessions, cookie, d.Auth), socketCtrl.ServeWS)

	return r
}
