// Package usecase はusersフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"account_backend/internal/feature/users/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// FindByUsername は指定されたユーザー名に一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindAll はすべてのユーザーをID昇順で取得します。
	FindAll(ctx context.Context) ([]entity.User, error)

	// Save はユーザーを永続化します。IDが0なら新規作成、それ以外は更新です。
	// 同じユーザー名が既に存在する場合、ErrUsernameTakenを返します。
	Save(ctx context.Context, user *entity.User) error

	// DeleteByID は指定されたIDのユーザーを削除します。
	// 該当行がない場合、ErrUserNotFoundを返します。
	DeleteByID(ctx context.Context, id uint) error
}

// PasswordHasher abstracts one-way password hashing and verification.
type PasswordHasher interface {
	// Hash returns the one-way hash of a raw password.
	Hash(password string) (string, error)
	// Compare verifies a raw password against a stored hash.
	// It returns a non-nil error when they do not match.
	Compare(hash, password string) error
}

// TokenGenerator はトークン発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenGenerator interface {
	// GenerateToken は指定されたユーザー名とロールクレームの署名済みトークンを生成します。
	GenerateToken(username, authority string) (string, error)
}

// directoryUsecase はユーザーディレクトリのビジネスロジックを実装します。
// エンドポイントと生の永続化の間のビジネスルール層です。
type directoryUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenGenerator
}

// NewDirectoryUsecase はdirectoryUsecaseの新しいインスタンスを生成します。
func NewDirectoryUsecase(users UserRepository, hasher PasswordHasher, tokens TokenGenerator) *directoryUsecase {
	return &directoryUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// normalizeRole はロールを小文字に正規化し、列挙セットに対して検証します。
func normalizeRole(role string) (string, error) {
	normalized := entity.NormalizeRole(role)
	if !entity.ValidRole(normalized) {
		return "", ErrInvalidRole
	}
	return normalized, nil
}

// Register は新規ユーザーを登録します。
// ユーザー名が既に存在する場合はErrUsernameTakenを返します。
// ロールは小文字に正規化され、省略時はstaffになります。
func (u *directoryUsecase) Register(ctx context.Context, username, rawPassword, fullName, role string) (*entity.User, error) {
	normalized, err := normalizeRole(role)
	if err != nil {
		return nil, err
	}

	// 挿入前にユーザー名の一意性を確認
	if _, err := u.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := u.hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		PasswordHash: hashed,
		FullName:     fullName,
		Role:         normalized,
	}
	if err := u.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate はユーザーを認証し、成功時にトークンとユーザーを返します。
// ユーザー未検出とパスワード不一致は呼び出し側から区別できません。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもハッシュ比較を実行します。
func (u *directoryUsecase) Authenticate(ctx context.Context, username, rawPassword string) (string, *entity.User, error) {
	user, err := u.users.FindByUsername(ctx, username)

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	// ハッシュ比較が常に実行されることを保証する
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if err == nil {
		passwordHash = user.PasswordHash
	}

	compareErr := u.hasher.Compare(passwordHash, rawPassword)

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, tokenErr := u.tokens.GenerateToken(user.Username, user.Authority())
	if tokenErr != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", tokenErr)
	}
	return token, user, nil
}

// ListUsers はすべてのユーザーを返します。
func (u *directoryUsecase) ListUsers(ctx context.Context) ([]entity.User, error) {
	return u.users.FindAll(ctx)
}

// UpdateProfile はフルネームと正規化済みロールを上書きし、更新後のユーザーを返します。
// 該当IDがない場合はErrUserNotFoundを返します。
func (u *directoryUsecase) UpdateProfile(ctx context.Context, id uint, fullName, role string) (*entity.User, error) {
	normalized, err := normalizeRole(role)
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FullName = fullName
	user.Role = normalized
	if err := u.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser は指定されたIDのユーザーを削除します。
// 削除は冪等ではなく、同じIDの2回目の削除はErrUserNotFoundになります。
func (u *directoryUsecase) DeleteUser(ctx context.Context, id uint) error {
	return u.users.DeleteByID(ctx, id)
}

// ChangePassword は本人による旧パスワード確認付きのパスワード変更です。
// 旧パスワードが一致しない場合、保存済みハッシュは変更されません。
func (u *directoryUsecase) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := u.hasher.Compare(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := u.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hashed
	return u.users.Save(ctx, user)
}

// ResetPassword は管理者起点のパスワードリセットです。
// 旧パスワードの確認は行わず、無条件にハッシュを置き換えます。
func (u *directoryUsecase) ResetPassword(ctx context.Context, id uint, newPassword string) error {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	hashed, err := u.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hashed
	return u.users.Save(ctx, user)
}
