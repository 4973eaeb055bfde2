package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/utils"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Users.GetAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}

func (uc *UserController) GetUserByID(c *gin.Context) {
	user, err := uc.Users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User detail", user)
}

// CreateUser is the admin path; unlike Register the caller may pick any role.
func (uc *UserController) CreateUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(utils.Validation(err))
		return
	}

	user, err := uc.Users.Create(c.Request.Context(), req.input())
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	if err := uc.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted", nil)
}
