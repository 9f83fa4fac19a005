// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"account_backend/internal/feature/users/adapters"
	"account_backend/internal/feature/users/usecase"
	"account_backend/internal/platform/cache"
)

// userCacheTTL はユーザーキャッシュの有効期間です。
// 書き込み時に無効化されるため、TTLは回収漏れに対する上限にすぎません。
const userCacheTTL = 5 * time.Minute

// NewUserRepository creates a UserRepository implementation.
// If Redis is available, the gorm-backed repository is wrapped with a
// read-through cache. Otherwise the database repository is used directly.
func NewUserRepository(rdb *redis.Client, db *gorm.DB) usecase.UserRepository {
	repo := adapters.NewUserGorm(db)
	if rdb != nil {
		return cache.NewCachingUserRepository(rdb, userCacheTTL, repo, "users")
	}
	return repo
}
