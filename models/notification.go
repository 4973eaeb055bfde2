package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationSystemAnnouncement NotificationType = "SYSTEM_ANNOUNCEMENT"
	NotificationAssignmentCreated  NotificationType = "ASSIGNMENT_CREATED"
	NotificationAssignmentUpdated  NotificationType = "ASSIGNMENT_UPDATED"
	NotificationAssignmentRemoved  NotificationType = "ASSIGNMENT_REMOVED"
	NotificationRosterUpdated      NotificationType = "ROSTER_UPDATED"
	NotificationReminder           NotificationType = "REMINDER"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationSystemAnnouncement, NotificationAssignmentCreated, NotificationAssignmentUpdated,
		NotificationAssignmentRemoved, NotificationRosterUpdated, NotificationReminder:
		return true
	}
	return false
}

type Notification struct {
	ID        string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string           `gorm:"type:varchar(36);not null;index" json:"userId"`
	User      *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Type      NotificationType `gorm:"type:varchar(40);not null;default:'SYSTEM_ANNOUNCEMENT'" json:"type"`
	Read      bool             `gorm:"column:is_read;not null;default:false" json:"read"`
	Metadata  datatypes.JSON   `json:"metadata,omitempty"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = NotificationSystemAnnouncement
	}
	return nil
}
