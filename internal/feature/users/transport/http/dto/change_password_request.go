package dto

// ChangePasswordReq は/users/change-passwordエンドポイントのリクエストボディを表します。
// 対象ユーザーはリクエストボディではなくトークンのsubjectから決まります。
type ChangePasswordReq struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=40"`
}
