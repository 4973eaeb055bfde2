package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/sessions"
	"github.com/yeremiapane/duty-roster/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users    *UserService
	Sessions sessions.Store
	Tokens   *utils.TokenSigner
}

func NewAuthService(users *UserService, store sessions.Store, tokens *utils.TokenSigner) *AuthService {
	return &AuthService{Users: users, Sessions: store, Tokens: tokens}
}

type LoginResult struct {
	User         *models.User
	SessionToken string
	SocketToken  string
}

func (s *AuthService) Register(ctx context.Context, in CreateUserInput) (*models.User, error) {
	return s.Users.Create(ctx, in)
}

// Login verifies credentials and opens a session. The socket token is a
// JWT bound to that session for live-channel handshakes.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NotFound("User not found, please register!")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, utils.BadRequest("Incorrect password")
		}
		return nil, err
	}

	token, sess, err := s.Sessions.Create(ctx, *user)
	if err != nil {
		return nil, err
	}

	socketToken, err := s.Tokens.Generate(user.ID, string(user.Role), sess.ID)
	if err != nil {
		_ = s.Sessions.Destroy(ctx, token)
		return nil, err
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	return &LoginResult{User: user, SessionToken: token, SocketToken: socketToken}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Sessions.Destroy(ctx, token)
}

// ResolveSocketToken validates a socket JWT and the session it names.
func (s *AuthService) ResolveSocketToken(ctx context.Context, raw string) (*models.Session, error) {
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return nil, utils.Unauthorized(err.Error())
	}
	sess, err := s.Sessions.ResolveID(ctx, claims.SessionID)
	if err != nil {
		return nil, utils.Unauthorized("Session expired, please login again")
	}
	return sess, nil
}
