package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const SeedPassword = "password123"

type SeedSummary struct {
	Users         int
	Rosters       int
	Assignments   int
	Notifications int
}

// Seed loads a week of demo data starting at the day of now: one admin, one
// supervisor, three staff, morning and evening rosters every day plus
// night rosters on even days, assigned round-robin to the staff.
func Seed(db *gorm.DB, now time.Time) (*SeedSummary, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var summary SeedSummary
	err = db.Transaction(func(tx *gorm.DB) error {
		newUser := func(name, email string, role models.Role) (models.User, error) {
			u := models.User{Name: name, Email: email, Password: string(hashed), Role: role}
			if err := tx.Create(&u).Error; err != nil {
				return u, fmt.Errorf("seed user %s: %w", email, err)
			}
			summary.Users++
			return u, nil
		}

		admin, err := newUser("Admin User", "admin@roster.com", models.RoleAdmin)
		if err != nil {
			return err
		}
		supervisor, err := newUser("John Supervisor", "supervisor@roster.com", models.RoleSupervisor)
		if err != nil {
			return err
		}
		staff := make([]models.User, 0, 3)
		for _, s := range []struct{ name, email string }{
			{"Alice Johnson", "alice@roster.com"},
			{"Bob Smith", "bob@roster.com"},
			{"Carol Davis", "carol@roster.com"},
		} {
			u, err := newUser(s.name, s.email, models.RoleStaff)
			if err != nil {
				return err
			}
			staff = append(staff, u)
		}

		var rosters []models.DutyRoster
		today := models.TruncateDay(now)
		for i := 0; i < 7; i++ {
			day := today.AddDate(0, 0, i)
			morning := models.DutyRoster{Date: day, Shift: models.ShiftMorning, AddedByID: supervisor.ID}
			evening := models.DutyRoster{Date: day, Shift: models.ShiftEvening, AddedByID: supervisor.ID}
			if err := tx.Create(&morning).Error; err != nil {
				return err
			}
			if err := tx.Create(&evening).Error; err != nil {
				return err
			}
			if i%2 == 0 {
				night := models.DutyRoster{Date: day, Shift: models.ShiftNight, AddedByID: admin.ID}
				if err := tx.Create(&night).Error; err != nil {
					return err
				}
				rosters = append(rosters, night)
			}
			rosters = append(rosters, morning, evening)
		}
		summary.Rosters = len(rosters)

		assignments := make([]models.Assignment, 0, len(rosters))
		for i, r := range rosters {
			a := models.Assignment{
				DutyRosterID: r.ID,
				UserID:       staff[i%len(staff)].ID,
				AssignedByID: supervisor.ID,
			}
			if err := tx.Create(&a).Error; err != nil {
				return err
			}
			assignments = append(assignments, a)
		}
		summary.Assignments = len(assignments)

		welcome := "Welcome to the duty roster management system. Check your assignments regularly."
		notifications := []models.Notification{
			seedNotification(staff[0].ID, "Welcome to Roster System", welcome,
				models.NotificationSystemAnnouncement, map[string]any{"isWelcome": true}),
			seedNotification(staff[1].ID, "Welcome to Roster System", welcome,
				models.NotificationSystemAnnouncement, map[string]any{"isWelcome": true}),
			seedNotification(staff[0].ID, "New Assignment",
				fmt.Sprintf("You have been assigned to the %s shift", rosters[0].Shift),
				models.NotificationAssignmentCreated, map[string]any{"assignmentId": assignments[0].ID}),
			seedNotification(staff[1].ID, "Shift Reminder", "Don't forget about your upcoming shift tomorrow morning",
				models.NotificationReminder, map[string]any{"shiftDate": now.Add(24 * time.Hour)}),
			seedNotification(admin.ID, "System Maintenance", "Scheduled maintenance will occur this weekend from 2 AM to 4 AM",
				models.NotificationSystemAnnouncement, map[string]any{
					"maintenanceStart": "2025-12-21T02:00:00Z",
					"maintenanceEnd":   "2025-12-21T04:00:00Z",
				}),
		}
		if err := tx.Create(&notifications).Error; err != nil {
			return err
		}
		summary.Notifications = len(notifications)
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"users":         summary.Users,
		"rosters":       summary.Rosters,
		"assignments":   summary.Assignments,
		"notifications": summary.Notifications,
	}).Info("Database seeded")
	return &summary, nil
}

func seedNotification(userID, title, message string, typ models.NotificationType, meta map[string]any) models.Notification {
	b, _ := json.Marshal(meta)
	return models.Notification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Type:     typ,
		Metadata: datatypes.JSON(b),
	}
}
