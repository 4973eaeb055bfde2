package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/utils"
)

type AssignmentController struct {
	Assignments *services.AssignmentService
}

func NewAssignmentController(assignments *services.AssignmentService) *AssignmentController {
	return &AssignmentController{Assignments: assignments}
}

func (ac *AssignmentController) GetAllAssignments(c *gin.Context) {
	list, err := ac.Assignments.GetAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Assignments retrieved successfully", list)
}

func (ac *AssignmentController) GetAssignmentByID(c *gin.Context) {
	a, err := ac.Assignments.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Assignment retrieved successfully", a)
}

func (ac *AssignmentController) GetUserAssignments(c *gin.Context) {
	list, err := ac.Assignments.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User assignments retrieved successfully", list)
}

func (ac *AssignmentController) GetAssignerAssignments(c *gin.Context) {
	list, err := ac.Assignments.GetByAssignerID(c.Request.Context(), c.Param("assignedById"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Assigner assignments retrieved successfully", list)
}

func (ac *AssignmentController) CreateAssignment(c *gin.Context) {
	var body struct {
		DutyRosterID string `json:"dutyRosterId" binding:"required"`
		UserID       string `json:"userId" binding:"required"`
		AssignedByID string `json:"assignedById"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(utils.Validation(err))
		return
	}

	a, err := ac.Assignments.Create(c.Request.Context(), services.AssignmentInput{
		DutyRosterID: body.DutyRosterID,
		UserID:       body.UserID,
		AssignedByID: actingUser(c, body.AssignedByID),
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Assignment created successfully", a)
}

func (ac *AssignmentController) UpdateAssignment(c *gin.Context) {
	var body struct {
		DutyRosterID *string `json:"dutyRosterId"`
		UserID       *string `json:"userId"`
		AssignedByID *string `json:"assignedById"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(utils.Validation(err))
		return
	}

	a, err := ac.Assignments.Update(c.Request.Context(), c.Param("id"), services.AssignmentUpdate{
		DutyRosterID: body.DutyRosterID,
		UserID:       body.UserID,
		AssignedByID: body.AssignedByID,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Assignment updated successfully", a)
}

func (ac *AssignmentController) DeleteAssignment(c *gin.Context) {
	if err := ac.Assignments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Assignment deleted successfully", nil)
}
