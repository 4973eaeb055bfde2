package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/realtime"
	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/gorm"
)

// MaxOccurrences bounds a single recurring request.
const MaxOccurrences = 366

type DutyRosterService struct {
	DB      *gorm.DB
	Emitter Emitter
}

func NewDutyRosterService(db *gorm.DB, emitter Emitter) *DutyRosterService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &DutyRosterService{DB: db, Emitter: emitter}
}

type RosterInput struct {
	Date  time.Time
	Shift models.Shift
}

type RosterUpdate struct {
	Date  *time.Time
	Shift *models.Shift
}

type RecurringInput struct {
	Rule   string
	Start  time.Time
	Shifts []models.Shift
}

// RosterEvent is the payload of the rosterUpdated push.
type RosterEvent struct {
	Action  string              `json:"action"`
	Rosters []models.DutyRoster `json:"rosters,omitempty"`
	ID      string              `json:"id,omitempty"`
}

// ParseDate accepts a bare calendar date or an RFC 3339 timestamp and
// returns the UTC midnight of that day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, utils.BadRequest("Invalid date: " + s)
	}
	return models.TruncateDay(t), nil
}

func (s *DutyRosterService) GetAll(ctx context.Context) ([]models.DutyRoster, error) {
	var rosters []models.DutyRoster
	err := s.DB.WithContext(ctx).
		Preload("Assignments").
		Order("date, shift").
		Find(&rosters).Error
	if err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}
	return rosters, nil
}

func (s *DutyRosterService) GetByID(ctx context.Context, id string) (*models.DutyRoster, error) {
	var roster models.DutyRoster
	err := s.DB.WithContext(ctx).
		Preload("Assignments").
		Preload("AddedBy").
		First(&roster, "id = ?", id).Error
	if err != nil {
		return nil, storageErr(err, "Duty roster not found", "get roster")
	}
	return &roster, nil
}

// GetByUserID lists the rosters a user is assigned to.
func (s *DutyRosterService) GetByUserID(ctx context.Context, userID string) ([]models.DutyRoster, error) {
	db := s.DB.WithContext(ctx)
	sub := db.Model(&models.Assignment{}).Select("duty_roster_id").Where("user_id = ?", userID)

	var rosters []models.DutyRoster
	if err := db.Where("id IN (?)", sub).Order("date, shift").Find(&rosters).Error; err != nil {
		return nil, fmt.Errorf("list rosters for user: %w", err)
	}
	return rosters, nil
}

func (s *DutyRosterService) GetByDate(ctx context.Context, date time.Time) ([]models.DutyRoster, error) {
	var rosters []models.DutyRoster
	err := s.DB.WithContext(ctx).
		Preload("Assignments").
		Where("date = ?", models.TruncateDay(date)).
		Order("shift").
		Find(&rosters).Error
	if err != nil {
		return nil, fmt.Errorf("list rosters by date: %w", err)
	}
	return rosters, nil
}

func (s *DutyRosterService) Create(ctx context.Context, addedByID string, in RosterInput) (*models.DutyRoster, error) {
	if !in.Shift.Valid() {
		return nil, utils.BadRequest("Invalid shift: " + string(in.Shift))
	}
	ok, err := exists(s.DB.WithContext(ctx), &models.User{}, addedByID)
	if err != nil {
		return nil, fmt.Errorf("check owner: %w", err)
	}
	if !ok {
		return nil, utils.NotFound("User not found")
	}

	roster := models.DutyRoster{
		Date:      models.TruncateDay(in.Date),
		Shift:     in.Shift,
		AddedByID: addedByID,
	}
	if err := s.DB.WithContext(ctx).Create(&roster).Error; err != nil {
		return nil, fmt.Errorf("create roster: %w", err)
	}
	s.Emitter.EmitToAll(realtime.EventRosterUpdated, RosterEvent{Action: "created", Rosters: []models.DutyRoster{roster}})
	return &roster, nil
}

// Occurrences expands rule from start. Rules without COUNT or UNTIL are
// rejected once they pass MaxOccurrences.
func Occurrences(rule string, start time.Time) ([]time.Time, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, utils.BadRequest("Invalid recurrence rule: " + err.Error())
	}
	r.DTStart(models.TruncateDay(start))

	var days []time.Time
	next := r.Iterator()
	for {
		t, ok := next()
		if !ok {
			break
		}
		if len(days) == MaxOccurrences {
			return nil, utils.BadRequest(fmt.Sprintf("Recurrence yields more than %d occurrences", MaxOccurrences))
		}
		days = append(days, models.TruncateDay(t))
	}
	return days, nil
}

// CreateRecurring creates one roster per occurrence and shift in a single
// transaction.
func (s *DutyRosterService) CreateRecurring(ctx context.Context, addedByID string, in RecurringInput) ([]models.DutyRoster, error) {
	if len(in.Shifts) == 0 {
		return nil, utils.BadRequest("At least one shift is required")
	}
	for _, sh := range in.Shifts {
		if !sh.Valid() {
			return nil, utils.BadRequest("Invalid shift: " + string(sh))
		}
	}
	days, err := Occurrences(in.Rule, in.Start)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, utils.BadRequest("Recurrence yields no occurrences")
	}

	rosters := make([]models.DutyRoster, 0, len(days)*len(in.Shifts))
	for _, d := range days {
		for _, sh := range in.Shifts {
			rosters = append(rosters, models.DutyRoster{Date: d, Shift: sh, AddedByID: addedByID})
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.User{}, addedByID)
		if err != nil {
			return err
		}
		if !ok {
			return utils.NotFound("User not found")
		}
		return tx.CreateInBatches(&rosters, 100).Error
	})
	if err != nil {
		return nil, storageErr(err, "User not found", "create recurring rosters")
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"rule":    in.Rule,
		"days":    len(days),
		"rosters": len(rosters),
	}).Info("recurring rosters created")
	s.Emitter.EmitToAll(realtime.EventRosterUpdated, RosterEvent{Action: "created", Rosters: rosters})
	return rosters, nil
}

func (s *DutyRosterService) Update(ctx context.Context, id string, in RosterUpdate) (*models.DutyRoster, error) {
	var roster models.DutyRoster
	if err := s.DB.WithContext(ctx).First(&roster, "id = ?", id).Error; err != nil {
		return nil, storageErr(err, "Duty roster not found", "get roster")
	}

	updates := map[string]interface{}{}
	if in.Date != nil {
		roster.Date = models.TruncateDay(*in.Date)
		updates["date"] = roster.Date
	}
	if in.Shift != nil {
		if !in.Shift.Valid() {
			return nil, utils.BadRequest("Invalid shift: " + string(*in.Shift))
		}
		roster.Shift = *in.Shift
		updates["shift"] = roster.Shift
	}
	if len(updates) > 0 {
		// the shift moved, so reminders already sent refer to the old start
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&roster).Updates(updates).Error; err != nil {
				return err
			}
			return tx.Model(&models.Assignment{}).
				Where("duty_roster_id = ?", roster.ID).
				Update("reminder_sent_at", nil).Error
		})
		if err != nil {
			return nil, fmt.Errorf("update roster: %w", err)
		}
	}

	s.Emitter.EmitToAll(realtime.EventRosterUpdated, RosterEvent{Action: "updated", Rosters: []models.DutyRoster{roster}})
	return &roster, nil
}

// Delete removes the roster together with its assignments.
func (s *DutyRosterService) Delete(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roster models.DutyRoster
		if err := tx.First(&roster, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("duty_roster_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&roster).Error
	})
	if err != nil {
		return storageErr(err, "Duty roster not found", "delete roster")
	}
	s.Emitter.EmitToAll(realtime.EventRosterUpdated, RosterEvent{Action: "deleted", ID: id})
	return nil
}
