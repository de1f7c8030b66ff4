package repository

import (
	"context"
	"errors"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"

	"gorm.io/gorm"
)

type verificationGormRepository struct {
	db *gorm.DB
}

func NewVerificationGormRepository(db *gorm.DB) repo.VerificationRepository {
	return &verificationGormRepository{db: db}
}

func (r *verificationGormRepository) CreateUnverified(ctx context.Context, u *model.UnverifiedUser) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return err
	}
	return nil
}

func (r *verificationGormRepository) FindUnverifiedByEmail(ctx context.Context, email string) (*model.UnverifiedUser, error) {
	var u model.UnverifiedUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *verificationGormRepository) FindUnverifiedByToken(ctx context.Context, token string) (*model.UnverifiedUser, error) {
	var u model.UnverifiedUser
	err := r.db.WithContext(ctx).Where("verification_token = ?", token).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *verificationGormRepository) DeleteUnverifiedByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.UnverifiedUser{}, id).Error
}

func (r *verificationGormRepository) CreateResetToken(ctx context.Context, t *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *verificationGormRepository) FindResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// 使い捨てにする。既に使用済みなら該当0件
func (r *verificationGormRepository) MarkResetTokenUsed(ctx context.Context, tokenID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("id = ? AND is_used = FALSE", tokenID).
		Update("is_used", true)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
