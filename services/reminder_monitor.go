package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/duty-roster/metrics"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/utils"
)

// ReminderMonitor polls for shifts about to start and sends each assignee a
// single REMINDER notification.
type ReminderMonitor struct {
	Assignments   *AssignmentService
	Notifications *NotificationService
	Interval      time.Duration
	Lead          time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

func NewReminderMonitor(assignments *AssignmentService, notifications *NotificationService, interval, lead time.Duration) *ReminderMonitor {
	return &ReminderMonitor{
		Assignments:   assignments,
		Notifications: notifications,
		Interval:      interval,
		Lead:          lead,
		stopChan:      make(chan struct{}),
		now:           time.Now,
	}
}

func (m *ReminderMonitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := m.RunOnce(ctx, m.now()); err != nil {
					utils.ErrorLogger.Errorf("reminder run failed: %v", err)
				}
			case <-ctx.Done():
				return
			case <-m.stopChan:
				return
			}
		}
	}()
}

func (m *ReminderMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// RunOnce sends the reminders due at now and returns how many went out.
func (m *ReminderMonitor) RunOnce(ctx context.Context, now time.Time) (int, error) {
	due, err := m.Assignments.DueForReminder(ctx, now, m.Lead)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, a := range due {
		starts := a.DutyRoster.StartsAt()
		meta, _ := json.Marshal(map[string]interface{}{
			"assignmentId": a.ID,
			"dutyRosterId": a.DutyRosterID,
			"startsAt":     starts,
		})
		_, err := m.Notifications.Create(ctx, a.UserID, NotificationInput{
			Title:    "Shift Reminder",
			Message:  fmt.Sprintf("Your %s shift starts at %s", a.DutyRoster.Shift, starts.Format("Mon 02 Jan 15:04 MST")),
			Type:     models.NotificationReminder,
			Metadata: meta,
		})
		if err != nil {
			utils.ErrorLogger.Errorf("reminder for assignment %s: %v", a.ID, err)
			continue
		}
		if err := m.Assignments.MarkReminded(ctx, a.ID, now); err != nil {
			return sent, err
		}
		sent++
	}

	if sent > 0 {
		metrics.RemindersSent.Add(float64(sent))
		utils.InfoLogger.WithFields(logrus.Fields{"sent": sent}).Info("shift reminders sent")
	}
	return sent, nil
}
