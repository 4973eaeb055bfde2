package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GormStore struct {
	DB  *gorm.DB
	TTL time.Duration
	now func() time.Time
}

func NewGormStore(db *gorm.DB, ttl time.Duration) *GormStore {
	return &GormStore{DB: db, TTL: ttl, now: time.Now}
}

func (s *GormStore) Create(ctx context.Context, user models.User) (string, *models.Session, error) {
	token, err := utils.NewSessionToken()
	if err != nil {
		return "", nil, err
	}
	sess := &models.Session{
		ID:        utils.HashToken(token),
		UserID:    user.ID,
		UserData:  datatypes.NewJSONType(user.Snapshot()),
		ExpiresAt: s.now().Add(s.TTL),
	}
	if err := s.DB.WithContext(ctx).Create(sess).Error; err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}
	return token, sess, nil
}

func (s *GormStore) Resolve(ctx context.Context, token string) (*models.Session, error) {
	return s.ResolveID(ctx, utils.HashToken(token))
}

func (s *GormStore) ResolveID(ctx context.Context, id string) (*models.Session, error) {
	db := s.DB.WithContext(ctx)

	var sess models.Session
	if err := db.First(&sess, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	now := s.now()
	if !sess.ExpiresAt.After(now) {
		db.Delete(&models.Session{}, "id = ?", id)
		return nil, ErrNotFound
	}

	sess.ExpiresAt = now.Add(s.TTL)
	if err := db.Model(&models.Session{}).Where("id = ?", id).Update("expires_at", sess.ExpiresAt).Error; err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	return &sess, nil
}

func (s *GormStore) Destroy(ctx context.Context, token string) error {
	return s.DB.WithContext(ctx).Delete(&models.Session{}, "id = ?", utils.HashToken(token)).Error
}

func (s *GormStore) DestroyUser(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Delete(&models.Session{}, "user_id = ?", userID).Error
}

// PurgeExpired removes sessions nobody resolved before they lapsed.
func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
