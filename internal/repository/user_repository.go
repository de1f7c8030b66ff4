package repository

import (
	"context"
	"errors"
	"time"

	"drinkshop/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 一意制約違反（email重複など）を統一
var ErrConflict = errors.New("conflict")

// プロフィール更新で触ってよいフィールドだけを列挙する。
// nilのフィールドは更新しない。
type ProfileUpdate struct {
	FirstName  *string
	LastName   *string
	MiddleName *string
	BirthDate  *time.Time
	Gender     *model.Gender
	Phone      *string
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	//nilでないフィールドだけ更新する
	UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error

	//自分以外の管理者の数（最後の管理者を消さないためのチェック用）
	CountAdminsExcept(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, userID int64) error
}
