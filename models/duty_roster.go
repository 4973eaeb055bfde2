package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shift string

const (
	ShiftMorning Shift = "MORNING"
	ShiftEvening Shift = "EVENING"
	ShiftNight   Shift = "NIGHT"
)

func ParseShift(s string) (Shift, bool) {
	sh := Shift(strings.ToUpper(strings.TrimSpace(s)))
	return sh, sh.Valid()
}

func (s Shift) Valid() bool {
	switch s {
	case ShiftMorning, ShiftEvening, ShiftNight:
		return true
	}
	return false
}

// StartOffset is the time of day, in UTC, at which the shift begins.
func (s Shift) StartOffset() time.Duration {
	switch s {
	case ShiftEvening:
		return 14 * time.Hour
	case ShiftNight:
		return 22 * time.Hour
	default:
		return 6 * time.Hour
	}
}

// DutyRoster is one shift slot on one day. Date is always a UTC midnight.
type DutyRoster struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Date        time.Time    `gorm:"not null;index" json:"date"`
	Shift       Shift        `gorm:"type:varchar(20);not null" json:"shift"`
	AddedByID   string       `gorm:"type:varchar(36);not null;index" json:"addedById"`
	AddedBy     *User        `gorm:"foreignKey:AddedByID;constraint:OnDelete:RESTRICT" json:"addedBy,omitempty"`
	Assignments []Assignment `gorm:"foreignKey:DutyRosterID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (d *DutyRoster) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// StartsAt is the instant the shift begins.
func (d DutyRoster) StartsAt() time.Time {
	return d.Date.Add(d.Shift.StartOffset())
}

// TruncateDay normalizes t to midnight UTC of its calendar day.
func TruncateDay(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
