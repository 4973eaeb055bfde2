package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/duty-roster/middlewares"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/services"
	"github.com/yeremiapane/duty-roster/utils"
)

type AuthController struct {
	Auth   *services.AuthService
	Cookie middlewares.CookieConfig
}

func NewAuthController(auth *services.AuthService, cookie middlewares.CookieConfig) *AuthController {
	return &AuthController{Auth: auth, Cookie: cookie}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,role"`
}

func (r registerRequest) input() services.CreateUserInput {
	role, _ := models.ParseRole(r.Role)
	return services.CreateUserInput{Name: r.Name, Email: r.Email, Password: r.Password, Role: role}
}

// Register creates an account. Role defaults to STAFF.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(utils.Validation(err))
		return
	}

	user, err := ac.Auth.Register(c.Request.Context(), req.input())
	if err != nil {
		c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User registered successfully", user.Snapshot())
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(utils.Validation(err))
		return
	}

	res, err := ac.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		c.Error(err)
		return
	}

	middlewares.SetSessionCookie(c, ac.Cookie, res.SessionToken)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"user":  res.User.Snapshot(),
		"token": res.SocketToken,
	})
}

// Logout runs behind OptionalSession so a missing session is a 400, not a 401.
func (ac *AuthController) Logout(c *gin.Context) {
	token := middlewares.SessionToken(c)
	if token == "" {
		c.Error(utils.BadRequest("You're not logged in, please login!"))
		return
	}
	if err := ac.Auth.Logout(c.Request.Context(), token); err != nil {
		c.Error(err)
		return
	}
	middlewares.ClearSessionCookie(c, ac.Cookie)
	utils.RespondJSON(c, http.StatusOK, "Logout successful", nil)
}

func (ac *AuthController) Me(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.Error(utils.Unauthorized("You're not logged in, please login!"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User info", user)
}
