package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/duty-roster/middlewares"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/utils"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	list, err := nc.Notifications.GetAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications retrieved successfully", list)
}

// CreateNotification sends to one user.
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	var body struct {
		UserID string `json:"userId" binding:"required"`
		services.NotificationInput
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(utils.Validation(err))
		return
	}

	n, err := nc.Notifications.Create(c.Request.Context(), body.UserID, body.NotificationInput)
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Notification created successfully", n)
}

func (nc *NotificationController) CreateRoleNotification(c *gin.Context) {
	role, ok := models.ParseRole(c.Param("role"))
	if !ok {
		c.Error(utils.BadRequest("Invalid role: " + c.Param("role")))
		return
	}
	var body services.NotificationInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(utils.Validation(err))
		return
	}

	list, err := nc.Notifications.CreateForRole(c.Request.Context(), role, body)
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Notifications sent successfully", list)
}

func (nc *NotificationController) Broadcast(c *gin.Context) {
	var body services.NotificationInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(utils.Validation(err))
		return
	}

	list, err := nc.Notifications.Broadcast(c.Request.Context(), body)
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Announcement broadcast successfully", list)
}

func (nc *NotificationController) GetUserNotifications(c *gin.Context) {
	list, err := nc.Notifications.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User notifications retrieved successfully", list)
}

// MarkAsRead is open to the owner and to anyone who may view any inbox.
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	n, err := nc.Notifications.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	if n.UserID != user.ID && !user.Role.Can(models.CapViewAnyInbox) {
		c.Error(utils.Forbidden("You don't have permission to perform this action"))
		return
	}

	n, err = nc.Notifications.MarkAsRead(c.Request.Context(), n.ID)
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", n)
}
