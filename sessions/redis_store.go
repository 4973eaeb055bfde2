package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/datatypes"
)

const keyPrefix = "roster:session:"

// RedisStore lets several server instances share sessions. Expiry is
// delegated to key TTLs.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func sessionKey(id string) string { return keyPrefix + id }

func userIndexKey(uid string) string { return keyPrefix + "user:" + uid }

func (s *RedisStore) Create(ctx context.Context, user models.User) (string, *models.Session, error) {
	token, err := utils.NewSessionToken()
	if err != nil {
		return "", nil, err
	}
	now := time.Now()
	sess := &models.Session{
		ID:        utils.HashToken(token),
		UserID:    user.ID,
		UserData:  datatypes.NewJSONType(user.Snapshot()),
		ExpiresAt: now.Add(s.TTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", nil, err
	}

	s.pruneIndex(ctx, user.ID)

	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), data, s.TTL)
	pipe.SAdd(ctx, userIndexKey(user.ID), sess.ID)
	pipe.Expire(ctx, userIndexKey(user.ID), s.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}
	return token, sess, nil
}

// pruneIndex drops ids whose session key already expired. Failures only
// leave stale ids behind, which DestroyUser tolerates.
func (s *RedisStore) pruneIndex(ctx context.Context, userID string) {
	ids, err := s.Client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil || len(ids) == 0 {
		return
	}
	var stale []interface{}
	for _, id := range ids {
		if n, err := s.Client.Exists(ctx, sessionKey(id)).Result(); err == nil && n == 0 {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		s.Client.SRem(ctx, userIndexKey(userID), stale...)
	}
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (*models.Session, error) {
	return s.ResolveID(ctx, utils.HashToken(token))
}

func (s *RedisStore) ResolveID(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.Client.GetEx(ctx, sessionKey(id), s.TTL).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	// the index lives as long as the newest activity of any of its sessions
	s.Client.Expire(ctx, userIndexKey(sess.UserID), s.TTL)
	sess.ExpiresAt = time.Now().Add(s.TTL)
	return &sess, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	id := utils.HashToken(token)
	raw, err := s.Client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err == nil {
		s.Client.SRem(ctx, userIndexKey(sess.UserID), id)
	}
	return s.Client.Del(ctx, sessionKey(id)).Err()
}

func (s *RedisStore) DestroyUser(ctx context.Context, userID string) error {
	ids, err := s.Client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userIndexKey(userID))
	return s.Client.Del(ctx, keys...).Err()
}
