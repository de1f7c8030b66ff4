package repository

import (
	"context"
	"errors"
	"time"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"

	"gorm.io/gorm"
)

type sessionGormRepository struct {
	db *gorm.DB
}

func NewSessionGormRepository(db *gorm.DB) repo.SessionRepository {
	return &sessionGormRepository{db: db}
}

func (r *sessionGormRepository) Create(ctx context.Context, s *model.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// token_hashで1件検索
func (r *sessionGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	var s model.Session

	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&s).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// 有効期限を先へ伸ばす（縮める方向には触らない）
func (r *sessionGormRepository) ExtendExpiry(ctx context.Context, sessionID string, until time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND expires_at < ?", sessionID, until).
		Update("expires_at", until)

	if res.Error != nil {
		return res.Error
	}
	return nil
}

func (r *sessionGormRepository) DeleteByID(ctx context.Context, sessionID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		Delete(&model.Session{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}
	return nil
}

// ログアウトは冪等にしたいので該当0件でもエラーを返さない
func (r *sessionGormRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Delete(&model.Session{}).Error
}

func (r *sessionGormRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Session{}).Error
}
