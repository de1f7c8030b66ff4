package repository

import (
	"context"
	"errors"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"

	"gorm.io/gorm"
)

type storeAddressGormRepository struct {
	db *gorm.DB
}

func NewStoreAddressGormRepository(db *gorm.DB) repo.StoreAddressRepository {
	return &storeAddressGormRepository{db: db}
}

func (r *storeAddressGormRepository) ListActive(ctx context.Context) ([]model.StoreAddress, error) {
	var list []model.StoreAddress
	if err := r.db.WithContext(ctx).
		Where("is_active = TRUE").
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *storeAddressGormRepository) FindByID(ctx context.Context, storeID int64) (model.StoreAddress, error) {
	var s model.StoreAddress
	err := r.db.WithContext(ctx).First(&s, storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.StoreAddress{}, repo.ErrNotFound
	}
	if err != nil {
		return model.StoreAddress{}, err
	}
	return s, nil
}

func (r *storeAddressGormRepository) Create(ctx context.Context, s model.StoreAddress) (model.StoreAddress, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.StoreAddress{}, err
	}
	return s, nil
}

func (r *storeAddressGormRepository) Update(ctx context.Context, s model.StoreAddress) error {
	res := r.db.WithContext(ctx).
		Model(&model.StoreAddress{}).
		Where("id = ?", s.ID).
		Select("full_address", "street", "house", "floor", "opening_hours", "phone", "is_active").
		Updates(s)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *storeAddressGormRepository) Delete(ctx context.Context, storeID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.StoreAddress{}, storeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
