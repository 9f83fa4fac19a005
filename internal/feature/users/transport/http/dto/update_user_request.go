package dto

// UpdateUserReq は/users/:idエンドポイントのリクエストボディを表します。
// ロールの列挙チェックはusecase側で大文字小文字を区別せずに行われます。
type UpdateUserReq struct {
	FullName string `json:"fullName" binding:"required,min=2,max=100"`
	Role     string `json:"role" binding:"required"`
}
