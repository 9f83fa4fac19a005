package dto

import (
	"time"

	"account_backend/internal/feature/users/domain/entity"
)

// UserResp is the outbound representation of a user.
// The password hash is deliberately excluded from every response.
type UserResp struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResp converts a domain user into its outbound representation.
func NewUserResp(u *entity.User) UserResp {
	return UserResp{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserRespList converts a slice of domain users into outbound representations.
func NewUserRespList(users []entity.User) []UserResp {
	out := make([]UserResp, 0, len(users))
	for i := range users {
		out = append(out, NewUserResp(&users[i]))
	}
	return out
}
