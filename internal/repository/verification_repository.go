package repository

import (
	"context"

	"drinkshop/internal/domain/model"
)

// メール確認待ちユーザーとパスワード再設定トークン
type VerificationRepository interface {
	CreateUnverified(ctx context.Context, u *model.UnverifiedUser) error
	FindUnverifiedByEmail(ctx context.Context, email string) (*model.UnverifiedUser, error)
	FindUnverifiedByToken(ctx context.Context, token string) (*model.UnverifiedUser, error)
	DeleteUnverifiedByID(ctx context.Context, id int64) error

	CreateResetToken(ctx context.Context, t *model.PasswordResetToken) error
	FindResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, tokenID int64) error
}
