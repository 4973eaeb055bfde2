package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/duty-roster/metrics"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/realtime"
	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationInput is the announcement part of a notification; the
// recipient is supplied separately.
type NotificationInput struct {
	Title    string                  `json:"title" binding:"required"`
	Message  string                  `json:"message" binding:"required"`
	Type     models.NotificationType `json:"type"`
	Metadata json.RawMessage         `json:"metadata,omitempty"`
}

type NotificationService struct {
	DB      *gorm.DB
	Emitter Emitter
}

func NewNotificationService(db *gorm.DB, emitter Emitter) *NotificationService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &NotificationService{DB: db, Emitter: emitter}
}

func (in NotificationInput) record(userID string) (models.Notification, error) {
	if in.Type == "" {
		in.Type = models.NotificationSystemAnnouncement
	}
	if !in.Type.Valid() {
		return models.Notification{}, utils.BadRequest("Invalid notification type: " + string(in.Type))
	}
	n := models.Notification{
		UserID:  userID,
		Title:   in.Title,
		Message: in.Message,
		Type:    in.Type,
	}
	if len(in.Metadata) > 0 {
		if !json.Valid(in.Metadata) {
			return n, utils.BadRequest("metadata must be valid JSON")
		}
		n.Metadata = datatypes.JSON(in.Metadata)
	}
	return n, nil
}

// Create persists a notification for one recipient and pushes it to that
// recipient's room. Nobody listening is not an error.
func (s *NotificationService) Create(ctx context.Context, userID string, in NotificationInput) (*models.Notification, error) {
	n, err := in.record(userID)
	if err != nil {
		return nil, err
	}

	ok, err := exists(s.DB.WithContext(ctx), &models.User{}, userID)
	if err != nil {
		return nil, fmt.Errorf("check recipient: %w", err)
	}
	if !ok {
		return nil, utils.NotFound("User not found")
	}

	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	s.Emitter.EmitToUser(n.UserID, realtime.EventNotification, n)
	return &n, nil
}

// CreateForRole stores one notification per holder of role and pushes
// each record to its own recipient.
func (s *NotificationService) CreateForRole(ctx context.Context, role models.Role, in NotificationInput) ([]models.Notification, error) {
	if !role.Valid() {
		return nil, utils.BadRequest("Invalid role: " + string(role))
	}

	var userIDs []string
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Pluck("id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("list %s users: %w", role, err)
	}

	records, err := s.createMany(ctx, userIDs, in)
	if err != nil {
		return nil, err
	}
	for _, n := range records {
		s.Emitter.EmitToUser(n.UserID, realtime.EventNotification, n)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"role":       role,
		"recipients": len(records),
	}).Info("role notification sent")
	return records, nil
}

// Broadcast stores the announcement for every user and pushes it once to
// all connected clients.
func (s *NotificationService) Broadcast(ctx context.Context, in NotificationInput) ([]models.Notification, error) {
	var userIDs []string
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	records, err := s.createMany(ctx, userIDs, in)
	if err != nil {
		return nil, err
	}
	s.Emitter.EmitToAll(realtime.EventNotification, in.payload())
	return records, nil
}

func (s *NotificationService) createMany(ctx context.Context, userIDs []string, in NotificationInput) ([]models.Notification, error) {
	records := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		n, err := in.record(id)
		if err != nil {
			return nil, err
		}
		records = append(records, n)
	}
	if len(records) == 0 {
		return records, nil
	}
	if err := s.DB.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, fmt.Errorf("create notifications: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(records[0].Type)).Add(float64(len(records)))
	return records, nil
}

func (in NotificationInput) payload() map[string]interface{} {
	t := in.Type
	if t == "" {
		t = models.NotificationSystemAnnouncement
	}
	p := map[string]interface{}{
		"title":   in.Title,
		"message": in.Message,
		"type":    t,
	}
	if len(in.Metadata) > 0 {
		p["metadata"] = in.Metadata
	}
	return p
}

func (s *NotificationService) GetAll(ctx context.Context) ([]models.Notification, error) {
	var list []models.Notification
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (s *NotificationService) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := s.DB.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, storageErr(err, "Notification not found", "get notification")
	}
	return &n, nil
}

// GetByUserID lists a user's inbox, newest first.
func (s *NotificationService) GetByUserID(ctx context.Context, userID string) ([]models.Notification, error) {
	var list []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications for user: %w", err)
	}
	return list, nil
}

// MarkAsRead flags the notification read and tells its owner. Calling it
// again is harmless and pushes again.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) (*models.Notification, error) {
	n, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !n.Read {
		if err := s.DB.WithContext(ctx).Model(n).Update("is_read", true).Error; err != nil {
			return nil, fmt.Errorf("mark notification read: %w", err)
		}
	}
	n.Read = true
	s.Emitter.EmitToUser(n.UserID, realtime.EventReadNotification, n)
	return n, nil
}
