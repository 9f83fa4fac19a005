package dto

// LoginResp は/auth/loginエンドポイントの成功レスポンスを表します。
type LoginResp struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
