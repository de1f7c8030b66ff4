package repository

import (
	"context"
	"errors"
	"time"

	"drinkshop/internal/domain/model"
)

var ErrSessionNotFound = errors.New("session not found")

// リフレッシュトークン（セッション）の保存・取得・失効
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)

	//スライディングウィンドウ延長
	ExtendExpiry(ctx context.Context, sessionID string, until time.Time) error

	DeleteByID(ctx context.Context, sessionID string) error
	//ログアウト。該当なしでもエラーにしない
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteAllByUserID(ctx context.Context, userID int64) error
}
