package dto

// ResetPasswordReq は/users/:id/reset-passwordエンドポイントのリクエストボディを表します。
type ResetPasswordReq struct {
	NewPassword string `json:"newPassword" binding:"required,min=6,max=40"`
}
