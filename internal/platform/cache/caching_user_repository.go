// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"account_backend/internal/feature/users/domain/entity"
	"account_backend/internal/feature/users/usecase"
)

// CachingUserRepository decorates a UserRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository. Lookups are read-through and every
// write invalidates the affected entries, so stale data never survives a
// mutation. All cache traffic is best effort: when Redis is unavailable the
// underlying repository serves every call.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// CachingUserRepositoryがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindByUsername retrieves a user, checking cache first then falling back to the database.
func (c *CachingUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByUsername(ctx, username)
	}

	key := c.usernameKey(username)
	if u, ok := c.getUser(ctx, key); ok {
		return u, nil
	}

	u, err := c.inner.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	c.setUser(ctx, key, u)
	return u, nil
}

// FindByID retrieves a user, checking cache first then falling back to the database.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.idKey(id)
	if u, ok := c.getUser(ctx, key); ok {
		return u, nil
	}

	u, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.setUser(ctx, key, u)
	return u, nil
}

// FindAll retrieves all users, checking cache first then falling back to the database.
func (c *CachingUserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindAll(ctx)
	}

	key := c.allKey()
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var cached []cachedUser
		if err := json.Unmarshal(b, &cached); err == nil {
			out := make([]entity.User, 0, len(cached))
			for i := range cached {
				out = append(out, *cached[i].toEntity())
			}
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// Store in cache (best effort)
	cached := make([]cachedUser, 0, len(out))
	for i := range out {
		cached = append(cached, newCachedUser(&out[i]))
	}
	if b, err := json.Marshal(cached); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// Save persists a user and invalidates related cache entries.
func (c *CachingUserRepository) Save(ctx context.Context, u *entity.User) error {
	// First save to the underlying repository
	if err := c.inner.Save(ctx, u); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}

	// Invalidate affected cache entries (best effort)
	_ = c.rdb.Del(ctx, c.usernameKey(u.Username), c.idKey(u.ID), c.allKey()).Err()
	return nil
}

// DeleteByID removes a user and invalidates related cache entries.
// The username key cannot be derived from the id alone, so the id-keyed
// entry is resolved first to clear it as well.
func (c *CachingUserRepository) DeleteByID(ctx context.Context, id uint) error {
	var username string
	if c.rdb != nil {
		if u, ok := c.getUser(ctx, c.idKey(id)); ok {
			username = u.Username
		} else if u, err := c.inner.FindByID(ctx, id); err == nil {
			username = u.Username
		}
	}

	if err := c.inner.DeleteByID(ctx, id); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}

	keys := []string{c.idKey(id), c.allKey()}
	if username != "" {
		keys = append(keys, c.usernameKey(username))
	}
	_ = c.rdb.Del(ctx, keys...).Err()
	return nil
}

// cachedUser is the cache encoding of a user. The entity excludes the
// password hash from JSON, so the cache needs its own representation to
// round-trip complete records.
type cachedUser struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newCachedUser(u *entity.User) cachedUser {
	return cachedUser{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (cu *cachedUser) toEntity() *entity.User {
	return &entity.User{
		ID:           cu.ID,
		Username:     cu.Username,
		PasswordHash: cu.PasswordHash,
		FullName:     cu.FullName,
		Role:         cu.Role,
		CreatedAt:    cu.CreatedAt,
		UpdatedAt:    cu.UpdatedAt,
	}
}

// getUser reads and decodes a single cached user. A decode failure clears the entry.
func (c *CachingUserRepository) getUser(ctx context.Context, key string) (*entity.User, bool) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	var cu cachedUser
	if err := json.Unmarshal(b, &cu); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false
	}
	return cu.toEntity(), true
}

// setUser encodes and stores a single user in the cache (best effort).
func (c *CachingUserRepository) setUser(ctx context.Context, key string, u *entity.User) {
	if b, err := json.Marshal(newCachedUser(u)); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// usernameKey generates the cache key for a username lookup.
func (c *CachingUserRepository) usernameKey(username string) string {
	return fmt.Sprintf("%s:name:%s", c.namespace, safe(username))
}

// idKey generates the cache key for an id lookup.
func (c *CachingUserRepository) idKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

// allKey generates the cache key for the full user list.
func (c *CachingUserRepository) allKey() string {
	return c.namespace + ":all"
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
