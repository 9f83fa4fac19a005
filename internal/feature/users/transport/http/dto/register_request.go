package dto

// RegisterReq represents the request body for the /auth/register endpoint.
// It uses Gin's binding tags for validation (username and password length, required full name).
// Role is validated case-insensitively in the usecase and defaults to staff when omitted.
type RegisterReq struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6,max=40"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role"`
}
