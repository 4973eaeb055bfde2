package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID             string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	DutyRosterID   string      `gorm:"type:varchar(36);not null;index" json:"dutyRosterId"`
	DutyRoster     *DutyRoster `gorm:"foreignKey:DutyRosterID" json:"dutyRoster,omitempty"`
	UserID         string      `gorm:"type:varchar(36);not null;index" json:"userId"`
	User           *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	AssignedByID   string      `gorm:"type:varchar(36);not null;index" json:"assignedById"`
	AssignedBy     *User       `gorm:"foreignKey:AssignedByID;constraint:OnDelete:RESTRICT" json:"assignedBy,omitempty"`
	ReminderSentAt *time.Time  `json:"reminderSentAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
