package router

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/users/domain/entity"
	usershandler "account_backend/internal/feature/users/transport/handler"
	"account_backend/internal/platform/http/handler"
	jwtmw "account_backend/internal/platform/jwt"
)

// NewRouter はルートテーブルを構築します。
// 認可はハンドラー本体の前にミドルウェアで評価されます。
func NewRouter(authHandler *usershandler.AuthHandler, userHandler *usershandler.UserHandler) *gin.Engine {
	r := gin.Default()

	// ブラウザSPA向けCORS設定
	// 認証情報（Authorizationヘッダー等）は既知のフロントエンドオリジンにのみ許可する
	origin := os.Getenv("FRONTEND_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	// 新規ユーザー登録
	r.POST("/auth/register", authHandler.Register)
	// ログイン（JWT 発行）
	r.POST("/auth/login", authHandler.Login)

	// 認証必須のルート
	users := r.Group("/users")
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	users.Use(jwtmw.AuthRequired())
	{
		// 本人によるパスワード変更（任意の認証済みロール）
		users.POST("/change-password", userHandler.ChangePassword)

		// 管理者ロール必須のルート
		admin := users.Group("")
		admin.Use(jwtmw.RequireRoles(entity.RoleAdmin))
		{
			admin.GET("", userHandler.List)
			admin.PUT("/:id", userHandler.Update)
			admin.DELETE("/:id", userHandler.Delete)
			admin.POST("/:id/reset-password", userHandler.ResetPassword)
		}
	}

	return r
}
