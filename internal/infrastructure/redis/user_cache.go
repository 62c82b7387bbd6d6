package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/parkwise/auth-service/internal/application/auth"
	"github.com/parkwise/auth-service/internal/domain"
)

// CachedUserRepo decorates an auth.UserRepo with a short-TTL Redis cache
// for GetByID, the hot lookup on the refresh path.
// - Read path: Redis -> DB fallback -> Redis set (best effort)
// - Write path: DB first, then cache invalidation (best effort)
// Redis being down must never fail auth; every cache error falls through
// to the database.
type CachedUserRepo struct {
	inner   auth.UserRepo
	rdb     *goredis.Client
	ttl     time.Duration
	keyPref string
}

func NewCachedUserRepo(inner auth.UserRepo, client *Client, ttl time.Duration) *CachedUserRepo {
	var rdb *goredis.Client
	if client != nil {
		rdb = client.rdb
	}
	return &CachedUserRepo{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		keyPref: "user:",
	}
}

func (c *CachedUserRepo) key(userID string) string {
	return c.keyPref + userID
}

// The full record is cached, hash included: PasswordChange reads the
// hash through GetByID, so a partial entry would break it. Mutations
// invalidate the key, which keeps a stale hash window bounded by ttl.
type cachedUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	IsVerified   bool      `json:"is_verified"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

func toCached(u domain.User) cachedUser {
	return cachedUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsVerified:   u.IsVerified,
		IsActive:     u.IsActive,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
	}
}

func (cu cachedUser) toDomain() domain.User {
	return domain.User{
		ID:           cu.ID,
		Name:         cu.Name,
		Email:        cu.Email,
		PasswordHash: cu.PasswordHash,
		IsVerified:   cu.IsVerified,
		IsActive:     cu.IsActive,
		IsAdmin:      cu.IsAdmin,
		CreatedAt:    cu.CreatedAt,
	}
}

func (c *CachedUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	// 1) Try Redis
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, c.key(id)).Bytes()
		if err == nil {
			var cu cachedUser
			if jerr := json.Unmarshal(raw, &cu); jerr == nil && cu.ID != "" {
				return cu.toDomain(), nil
			}
			// corrupt entry -> fall back to DB
		}
		// goredis.Nil and transport errors both fall through
	}

	// 2) DB source of truth
	u, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	// 3) Best-effort cache fill
	if c.rdb != nil {
		if raw, jerr := json.Marshal(toCached(u)); jerr == nil {
			_ = c.rdb.Set(ctx, c.key(id), raw, c.ttl).Err()
		}
	}

	return u, nil
}

func (c *CachedUserRepo) invalidate(ctx context.Context, userID string) {
	if c.rdb != nil {
		_ = c.rdb.Del(ctx, c.key(userID)).Err()
	}
}

/*
Mutations delegate to inner and drop the cached entry so the next read
repopulates from the database.
*/

func (c *CachedUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	if err := c.inner.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

func (c *CachedUserRepo) SetVerified(ctx context.Context, userID string) error {
	if err := c.inner.SetVerified(ctx, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

func (c *CachedUserRepo) Deactivate(ctx context.Context, userID string) error {
	if err := c.inner.Deactivate(ctx, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

/*
Below: pass-through reads that must always see the source of truth.
*/

func (c *CachedUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return c.inner.GetByEmail(ctx, email)
}

func (c *CachedUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return c.inner.Create(ctx, u)
}
