package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/sessions"
	"github.com/yeremiapane/duty-roster/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	DB         *gorm.DB
	Sessions   sessions.Store
	BcryptCost int
}

func NewUserService(db *gorm.DB, store sessions.Store) *UserService {
	return &UserService{DB: db, Sessions: store, BcryptCost: bcrypt.DefaultCost}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, storageErr(err, "User not found", "get user")
	}
	return &user, nil
}

// FindByEmail returns nil, nil when no user has that email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// Create hashes the password and stores the user. An email already on
// file is rejected.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleStaff
	}
	if !in.Role.Valid() {
		return nil, utils.BadRequest("Invalid role: " + string(in.Role))
	}

	existing, err := s.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.BadRequest("User already exist!")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Password: string(hashed),
		Role:     in.Role,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	utils.InfoLogger.Printf("New user created: %s (role=%s)", user.Email, user.Role)
	return &user, nil
}

// Delete refuses while the user still owns rosters or is recorded as the
// assigner of any assignment. Otherwise the user's own assignments,
// notifications and sessions go with them.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return storageErr(err, "User not found", "get user")
		}

		var owned, assigned int64
		if err := tx.Model(&models.DutyRoster{}).Where("added_by_id = ?", id).Count(&owned).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Assignment{}).Where("assigned_by_id = ? AND user_id <> ?", id, id).Count(&assigned).Error; err != nil {
			return err
		}
		if owned > 0 || assigned > 0 {
			return utils.Conflict(fmt.Sprintf(
				"User still owns %d roster(s) and made %d assignment(s); reassign them first", owned, assigned))
		}

		if err := tx.Where("user_id = ? OR assigned_by_id = ?", id, id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}

	// redis-backed sessions live outside the transaction
	if s.Sessions != nil {
		if err := s.Sessions.DestroyUser(ctx, id); err != nil {
			utils.ErrorLogger.Errorf("drop sessions of deleted user %s: %v", id, err)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
