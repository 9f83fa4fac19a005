package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/users/domain/entity"
	"account_backend/internal/feature/users/transport/http/dto"
	"account_backend/internal/feature/users/usecase"
	jwtmw "account_backend/internal/platform/jwt"
)

// DirectoryUsecase はユーザー管理操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type DirectoryUsecase interface {
	// ListUsers はすべてのユーザーを返します。
	ListUsers(ctx context.Context) ([]entity.User, error)
	// UpdateProfile はフルネームとロールを上書きし、更新後のユーザーを返します。
	UpdateProfile(ctx context.Context, id uint, fullName, role string) (*entity.User, error)
	// DeleteUser は指定されたIDのユーザーを削除します。
	DeleteUser(ctx context.Context, id uint) error
	// ChangePassword は旧パスワード確認付きのパスワード変更です。
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	// ResetPassword は旧パスワード確認なしの管理者向けパスワードリセットです。
	ResetPassword(ctx context.Context, id uint, newPassword string) error
}

// UserHandler はユーザー管理操作のHTTPリクエストを処理します。
// 管理者向けのCRUDと本人向けのパスワード変更を提供します。
// ロールの認可はハンドラー本体が実行される前にミドルウェアで行われます。
type UserHandler struct {
	directory DirectoryUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(directory DirectoryUsecase) *UserHandler {
	return &UserHandler{directory: directory}
}

// pathID はURLパスの:idパラメータを解析します。
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return uint(id), true
}

// List はすべてのユーザーを返却します。
// パスワードハッシュはレスポンス表現から除外されます。
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.directory.ListUsers(c.Request.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	slog.Info("listed users", "count", len(users))
	c.JSON(http.StatusOK, dto.NewUserRespList(users))
}

// Update はユーザーのフルネームとロールを更新します。
// - 該当IDがない場合は404を返却
// - バリデーションエラー・不正ロール時は400を返却
// - 成功時は更新後のユーザーを200で返却
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update validation failed", "error", err, "user_id", id)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.directory.UpdateProfile(c.Request.Context(), id, req.FullName, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			slog.Warn("update failed: user not found", "user_id", id)
			c.JSON(http.StatusNotFound, gin.H{"error": usecase.ErrUserNotFound.Error()})
		case errors.Is(err, usecase.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("update failed", "error", err, "user_id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	slog.Info("user updated", "user_id", user.ID, "username", user.Username, "role", user.Role)
	c.JSON(http.StatusOK, dto.NewUserResp(user))
}

// Delete はユーザーをハードデリートします。
// 削除は冪等ではなく、同じIDの2回目の削除は404になります。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.directory.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			slog.Warn("delete failed: user not found", "user_id", id)
			c.JSON(http.StatusNotFound, gin.H{"error": usecase.ErrUserNotFound.Error()})
			return
		}
		slog.Error("delete failed", "error", err, "user_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	slog.Info("user deleted", "user_id", id)
	c.Status(http.StatusOK)
}

// ChangePassword は認証済みユーザー本人のパスワードを変更します。
// 対象ユーザーはリクエストボディではなく、検証済みトークンのsubjectから取得します。
func (h *UserHandler) ChangePassword(c *gin.Context) {
	username := c.GetString(jwtmw.ContextUsername)
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token subject"})
		return
	}

	var req dto.ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("change password validation failed", "error", err, "username", username)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.directory.ChangePassword(c.Request.Context(), username, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, usecase.ErrInvalidCredentials):
			slog.Warn("change password failed", "error", err, "username", username)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("change password failed", "error", err, "username", username)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	slog.Info("password changed", "username", username)
	c.Status(http.StatusOK)
}

// ResetPassword は管理者起点のパスワードリセットです。
// 旧パスワードの確認は行いません。失敗時はメッセージ付きで400を返却します。
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("reset password validation failed", "error", err, "user_id", id)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.directory.ResetPassword(c.Request.Context(), id, req.NewPassword); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			slog.Warn("reset password failed: user not found", "user_id", id)
			c.JSON(http.StatusBadRequest, gin.H{"error": usecase.ErrUserNotFound.Error()})
			return
		}
		slog.Error("reset password failed", "error", err, "user_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	slog.Info("password reset", "user_id", id)
	c.Status(http.StatusOK)
}
