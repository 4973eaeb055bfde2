package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/gorm"
)

type AssignmentService struct {
	DB            *gorm.DB
	Notifications *NotificationService
}

func NewAssignmentService(db *gorm.DB, notifications *NotificationService) *AssignmentService {
	return &AssignmentService{DB: db, Notifications: notifications}
}

type AssignmentInput struct {
	DutyRosterID string
	UserID       string
	AssignedByID string
}

type AssignmentUpdate struct {
	DutyRosterID *string
	UserID       *string
	AssignedByID *string
}

func (s *AssignmentService) query(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Preload("DutyRoster").Preload("User")
}

func (s *AssignmentService) GetAll(ctx context.Context) ([]models.Assignment, error) {
	var list []models.Assignment
	if err := s.query(ctx).Order("created_at").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return list, nil
}

func (s *AssignmentService) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	var a models.Assignment
	if err := s.query(ctx).Preload("AssignedBy").First(&a, "id = ?", id).Error; err != nil {
		return nil, storageErr(err, "Assignment not found", "get assignment")
	}
	return &a, nil
}

func (s *AssignmentService) GetByUserID(ctx context.Context, userID string) ([]models.Assignment, error) {
	var list []models.Assignment
	if err := s.query(ctx).Where("user_id = ?", userID).Order("created_at").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list assignments for user: %w", err)
	}
	return list, nil
}

func (s *AssignmentService) GetByAssignerID(ctx context.Context, assignedByID string) ([]models.Assignment, error) {
	var list []models.Assignment
	if err := s.query(ctx).Where("assigned_by_id = ?", assignedByID).Order("created_at").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list assignments by assigner: %w", err)
	}
	return list, nil
}

// checkRefs verifies the roster and both users exist.
func (s *AssignmentService) checkRefs(db *gorm.DB, rosterID, userID, assignedByID string) error {
	refs := []struct {
		model interface{}
		id    string
		msg   string
	}{
		{&models.DutyRoster{}, rosterID, "Duty roster not found"},
		{&models.User{}, userID, "Assigned user not found"},
		{&models.User{}, assignedByID, "Assigning user not found"},
	}
	for _, r := range refs {
		ok, err := exists(db, r.model, r.id)
		if err != nil {
			return fmt.Errorf("check references: %w", err)
		}
		if !ok {
			return utils.NotFound(r.msg)
		}
	}
	return nil
}

func (s *AssignmentService) Create(ctx context.Context, in AssignmentInput) (*models.Assignment, error) {
	db := s.DB.WithContext(ctx)
	if err := s.checkRefs(db, in.DutyRosterID, in.UserID, in.AssignedByID); err != nil {
		return nil, err
	}

	a := models.Assignment{
		DutyRosterID: in.DutyRosterID,
		UserID:       in.UserID,
		AssignedByID: in.AssignedByID,
	}
	if err := db.Create(&a).Error; err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.notify(ctx, a, a.UserID, models.NotificationAssignmentCreated, "New Assignment", "You have been assigned to a new shift")
	return s.GetByID(ctx, a.ID)
}

func (s *AssignmentService) Update(ctx context.Context, id string, in AssignmentUpdate) (*models.Assignment, error) {
	db := s.DB.WithContext(ctx)
	var a models.Assignment
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		return nil, storageErr(err, "Assignment not found", "get assignment")
	}
	previous := a.UserID
	previousRoster := a.DutyRosterID

	if in.DutyRosterID != nil {
		a.DutyRosterID = *in.DutyRosterID
	}
	if in.UserID != nil {
		a.UserID = *in.UserID
	}
	if in.AssignedByID != nil {
		a.AssignedByID = *in.AssignedByID
	}
	if err := s.checkRefs(db, a.DutyRosterID, a.UserID, a.AssignedByID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"duty_roster_id": a.DutyRosterID,
		"user_id":        a.UserID,
		"assigned_by_id": a.AssignedByID,
	}
	// a new assignee or a different shift is owed its own reminder
	if previous != a.UserID || previousRoster != a.DutyRosterID {
		updates["reminder_sent_at"] = nil
	}
	if err := db.Model(&a).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	if previous != a.UserID {
		s.notify(ctx, a, previous, models.NotificationAssignmentRemoved, "Assignment Removed", "You have been removed from a shift")
		s.notify(ctx, a, a.UserID, models.NotificationAssignmentCreated, "New Assignment", "You have been assigned to a new shift")
	} else {
		s.notify(ctx, a, a.UserID, models.NotificationAssignmentUpdated, "Assignment Updated", "One of your shifts has changed")
	}
	return s.GetByID(ctx, a.ID)
}

func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	db := s.DB.WithContext(ctx)
	var a models.Assignment
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		return storageErr(err, "Assignment not found", "get assignment")
	}
	if err := db.Delete(&a).Error; err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	s.notify(ctx, a, a.UserID, models.NotificationAssignmentRemoved, "Assignment Removed", "You have been removed from a shift")
	return nil
}

// notify failures are logged, the assignment change already happened.
func (s *AssignmentService) notify(ctx context.Context, a models.Assignment, userID string, t models.NotificationType, title, msg string) {
	if s.Notifications == nil {
		return
	}
	meta := fmt.Sprintf(`{"assignmentId":%q,"dutyRosterId":%q}`, a.ID, a.DutyRosterID)
	_, err := s.Notifications.Create(ctx, userID, NotificationInput{
		Title:    title,
		Message:  msg,
		Type:     t,
		Metadata: json.RawMessage(meta),
	})
	if err != nil {
		utils.ErrorLogger.Errorf("notify %s about assignment %s: %v", userID, a.ID, err)
	}
}

// DueForReminder returns assignments without a reminder whose shift
// starts in [now, now+lead].
func (s *AssignmentService) DueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]models.Assignment, error) {
	now = now.UTC()
	until := now.Add(lead)

	var candidates []models.Assignment
	err := s.DB.WithContext(ctx).
		Preload("DutyRoster").
		Joins("JOIN duty_rosters ON duty_rosters.id = assignments.duty_roster_id").
		Where("assignments.reminder_sent_at IS NULL").
		Where("duty_rosters.date BETWEEN ? AND ?", models.TruncateDay(now), models.TruncateDay(until)).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("find due assignments: %w", err)
	}

	due := candidates[:0]
	for _, a := range candidates {
		if a.DutyRoster == nil {
			continue
		}
		start := a.DutyRoster.StartsAt()
		if !start.Before(now) && !start.After(until) {
			due = append(due, a)
		}
	}
	return due, nil
}

func (s *AssignmentService) MarkReminded(ctx context.Context, id string, at time.Time) error {
	err := s.DB.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ?", id).
		Update("reminder_sent_at", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	return nil
}
