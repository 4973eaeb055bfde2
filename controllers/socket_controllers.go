package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/duty-roster/middlewares"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/realtime"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/utils"
)

const socketOpTimeout = 5 * time.Second

// SocketController upgrades /api/ws and handles the frames clients send.
type SocketController struct {
	Hub           *realtime.Hub
	Users         *services.UserService
	Notifications *services.NotificationService
	upgrader      websocket.Upgrader
}

func NewSocketController(hub *realtime.Hub, users *services.UserService, notifications *services.NotificationService, origin string) *SocketController {
	return &SocketController{
		Hub:           hub,
		Users:         users,
		Notifications: notifications,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return o == "" || o == origin
			},
		},
	}
}

// ServeWS must run behind WebSocketAuth.
func (sc *SocketController) ServeWS(c *gin.Context) {
	sess, ok := middlewares.CurrentSession(c)
	if !ok {
		c.Error(utils.Unauthorized("Authentication required for the live channel"))
		return
	}

	ws, err := sc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("websocket upgrade: %v", err)
		return
	}

	snap := sess.Snapshot()
	client := realtime.NewClient(sc.Hub, ws, snap.ID, snap.Role)
	utils.InfoLogger.WithFields(logrus.Fields{"user": snap.ID, "role": snap.Role}).Info("socket connected")
	client.Run(sc)
	utils.InfoLogger.WithFields(logrus.Fields{"user": snap.ID}).Info("socket disconnected")
}

func (sc *SocketController) HandleMessage(c *realtime.Client, in realtime.Inbound) {
	ctx, cancel := context.WithTimeout(context.Background(), socketOpTimeout)
	defer cancel()

	var id string
	if err := json.Unmarshal(in.Data, &id); err != nil || id == "" {
		c.Reply(realtime.EventError, "data must be a non-empty string")
		return
	}

	switch in.Event {
	case realtime.EventJoin:
		sc.join(ctx, c, id)
	case realtime.EventMarkAsRead:
		sc.markAsRead(ctx, c, id)
	default:
		c.Reply(realtime.EventError, "unknown event: "+in.Event)
	}
}

// join puts the client in its own user and role rooms. A client can only
// ever claim the identity it authenticated with.
func (sc *SocketController) join(ctx context.Context, c *realtime.Client, userID string) {
	if userID != c.UserID {
		c.Reply(realtime.EventError, "cannot join another user's room")
		return
	}

	user, err := sc.Users.GetByID(ctx, userID)
	if err != nil {
		c.Reply(realtime.EventError, err.Error())
		return
	}

	rooms := []string{realtime.UserRoom(user.ID), realtime.RoleRoom(user.Role)}
	c.Hub().Join(c, rooms...)
	c.Reply(realtime.EventJoined, gin.H{"userId": user.ID, "rooms": rooms})
}

func (sc *SocketController) markAsRead(ctx context.Context, c *realtime.Client, id string) {
	n, err := sc.Notifications.GetByID(ctx, id)
	if err != nil {
		c.Reply(realtime.EventError, err.Error())
		return
	}
	if n.UserID != c.UserID && !c.Role.Can(models.CapViewAnyInbox) {
		c.Reply(realtime.EventError, "forbidden")
		return
	}
	if _, err := sc.Notifications.MarkAsRead(ctx, id); err != nil {
		c.Reply(realtime.EventError, err.Error())
	}
}
