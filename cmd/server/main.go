package main

import (
	"log"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"account_backend/internal/app/di"
	"account_backend/internal/app/router"
	usershandler "account_backend/internal/feature/users/transport/handler"
	usersusecase "account_backend/internal/feature/users/usecase"
	"account_backend/internal/platform/hash"
	jwtmw "account_backend/internal/platform/jwt"
	infraredis "account_backend/internal/platform/redis"

	infradb "account_backend/internal/platform/db"
)

// tokenLifetime は発行するJWTの有効期間です。
const tokenLifetime = 24 * time.Hour

func main() {
	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	// Repository（Redisキャッシュでラップ）
	userRepo := di.NewUserRepository(rdb, db)

	// Usecase
	directoryUC := usersusecase.NewDirectoryUsecase(
		userRepo,
		hash.NewBcryptHasher(),
		jwtmw.NewGenerator(secret, tokenLifetime),
	)

	// Handler
	authH := usershandler.NewAuthHandler(directoryUC)
	userH := usershandler.NewUserHandler(directoryUC)

	// ルータ生成
	router := router.NewRouter(authH, userH)

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
