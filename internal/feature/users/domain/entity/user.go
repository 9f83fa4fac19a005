// Package entity はusersフィーチャーのドメインエンティティを定義します。
package entity

import (
	"strings"
	"time"
)

// システムで利用可能なロール。小文字で保存されます。
const (
	RoleAdmin     = "admin"
	RoleStaff     = "staff"
	RoleWarehouse = "warehouse"
)

// User represents a registered account in the system.
// It contains authentication credentials and profile data for user management.
type User struct {
	// ID is the unique identifier for the user. Never reused after deletion.
	ID uint `json:"id" gorm:"primaryKey"`

	// Username is the unique login name. Immutable after creation.
	Username string `json:"username" gorm:"uniqueIndex;size:20;not null"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never store plaintext passwords and is excluded from JSON.
	PasswordHash string `json:"-" gorm:"size:255;not null"`

	// FullName is the user's display name.
	FullName string `json:"fullName" gorm:"size:100;not null"`

	// Role is one of admin, staff or warehouse, stored lower-case.
	Role string `json:"role" gorm:"size:20;not null;default:staff"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeRole はロールを保存用の小文字形式に変換します。
// 空文字列の場合はデフォルトのstaffを返します。
func NormalizeRole(role string) string {
	if role == "" {
		return RoleStaff
	}
	return strings.ToLower(role)
}

// ValidRole は正規化済みのロールが列挙セットに含まれるかを報告します。
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleWarehouse:
		return true
	}
	return false
}

// Authority はトークンに載せるロールクレーム（ROLE_ADMIN等）を返します。
func (u *User) Authority() string {
	return "ROLE_" + strings.ToUpper(u.Role)
}
