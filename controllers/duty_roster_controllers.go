package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/duty-roster/middlewares"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/utils"
)

type DutyRosterController struct {
	Rosters *services.DutyRosterService
}

func NewDutyRosterController(rosters *services.DutyRosterService) *DutyRosterController {
	return &DutyRosterController{Rosters: rosters}
}

// actingUser is the explicit id from the body, or the caller.
func actingUser(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	user, _ := middlewares.CurrentUser(c)
	return user.ID
}

func (dc *DutyRosterController) GetAllRosters(c *gin.Context) {
	rosters, err := dc.Rosters.GetAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Rosters retrieved successfully", rosters)
}

func (dc *DutyRosterController) GetRosterByID(c *gin.Context) {
	roster, err := dc.Rosters.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Roster retrieved successfully", roster)
}

func (dc *DutyRosterController) GetUserRosters(c *gin.Context) {
	rosters, err := dc.Rosters.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User rosters retrieved successfully", rosters)
}

func (dc *DutyRosterController) GetRostersByDate(c *gin.Context) {
	date, err := services.ParseDate(c.Param("date"))
	if err != nil {
		c.Error(err)
		return
	}
	rosters, err := dc.Rosters.GetByDate(c.Request.Context(), date)
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Rosters retrieved successfully", rosters)
}

func (dc *DutyRosterController) CreateRoster(c *gin.Context) {
	var body struct {
		AddedByID string `json:"addedById"`
		Date      string `json:"date" binding:"required"`
		Shift     string `json:"shift" binding:"required,shift"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(utils.Validation(err))
		return
	}
	date, err := services.ParseDate(body.Date)
	if err != nil {
		c.Error(err)
		return
	}
	shift, _ := models.ParseShift(body.Shift)

	roster, err := dc.Rosters.Create(c.Request.Context(), actingUser(c, body.AddedByID), services.RosterInput{
		Date:  date,
		Shift: shift,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Roster created successfully", roster)
}

func (dc *DutyRosterController) CreateRecurringRosters(c *gin.Context) {
	var body struct {
		AddedByID string   `json:"addedById"`
		Rule      string   `json:"rule" binding:"required"`
		StartDate string   `json:"startDate" binding:"required"`
		Shifts    []string `json:"shifts" binding:"required,min=1,dive,shift"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(utils.Validation(err))
		return
	}
	start, err := services.ParseDate(body.StartDate)
	if err != nil {
		c.Error(err)
		return
	}
	shifts := make([]models.Shift, 0, len(body.Shifts))
	for _, s := range body.Shifts {
		sh, _ := models.ParseShift(s)
		shifts = append(shifts, sh)
	}

	rosters, err := dc.Rosters.CreateRecurring(c.Request.Context(), actingUser(c, body.AddedByID), services.RecurringInput{
		Rule:   body.Rule,
		Start:  start,
		Shifts: shifts,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Rosters created successfully", rosters)
}

func (dc *DutyRosterController) UpdateRoster(c *gin.Context) {
	var body struct {
		Date  *string `json:"date"`
		Shift *string `json:"shift" binding:"omitempty,shift"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(utils.Validation(err))
		return
	}

	var in services.RosterUpdate
	if body.Date != nil {
		date, err := services.ParseDate(*body.Date)
		if err != nil {
			c.Error(err)
			return
		}
		in.Date = &date
	}
	if body.Shift != nil {
		shift, _ := models.ParseShift(*body.Shift)
		in.Shift = &shift
	}

	roster, err := dc.Rosters.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Roster updated successfully", roster)
}

func (dc *DutyRosterController) DeleteRoster(c *gin.Context) {
	if err := dc.Rosters.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Roster deleted successfully", nil)
}
