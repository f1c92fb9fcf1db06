package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/persistence"
)

// profileCache keeps public identity fields in Redis so repeated profile
// lookups skip the store. Entries are short-lived and invalidated on user
// update or delete; the password hash is never cached.
type profileCache struct {
	redis *persistence.Redis
	ttl   time.Duration
}

type cachedProfile struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func newProfileCache(redis *persistence.Redis, ttlSeconds int) *profileCache {
	if ttlSeconds <= 0 {
		ttlSeconds = 60
	}
	return &profileCache{redis: redis, ttl: time.Duration(ttlSeconds) * time.Second}
}

func profileKey(id int64) string {
	return fmt.Sprintf("user:profile:%d", id)
}

func (c *profileCache) get(ctx context.Context, id int64) (*domain.User, bool) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, false
	}
	raw, err := c.redis.Client.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var cached cachedProfile
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	return &domain.User{
		ID:        cached.ID,
		Name:      cached.Name,
		Email:     cached.Email,
		Role:      cached.Role,
		CreatedAt: cached.CreatedAt,
		UpdatedAt: cached.UpdatedAt,
	}, true
}

func (c *profileCache) set(ctx context.Context, user *domain.User) {
	if c == nil || c.redis == nil || c.redis.Client == nil || user == nil {
		return
	}
	raw, err := json.Marshal(cachedProfile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if err != nil {
		return
	}
	_ = c.redis.Client.Set(ctx, profileKey(user.ID), raw, c.ttl).Err()
}

func (c *profileCache) invalidate(ctx context.Context, id int64) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	_ = c.redis.Client.Del(ctx, profileKey(id)).Err()
}
