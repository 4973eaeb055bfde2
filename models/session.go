package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session is keyed by the SHA-256 of the cookie token, never the token itself.
type Session struct {
	ID        string                           `gorm:"type:varchar(64);primaryKey"`
	UserID    string                           `gorm:"type:varchar(36);not null;index"`
	UserData  datatypes.JSONType[UserSnapshot] `gorm:"column:user_snapshot"`
	ExpiresAt time.Time                        `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Session) Snapshot() UserSnapshot {
	return s.UserData.Data()
}
