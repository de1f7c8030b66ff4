package repository

import (
	"context"
	"errors"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"

	"gorm.io/gorm"
)

type variantGormRepository struct {
	db *gorm.DB
}

func NewVariantGormRepository(db *gorm.DB) repo.VariantRepository {
	return &variantGormRepository{db: db}
}

func (r *variantGormRepository) FindByID(ctx context.Context, variantID int64) (model.DrinkVariant, error) {
	var v model.DrinkVariant
	err := r.db.WithContext(ctx).First(&v, variantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DrinkVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DrinkVariant{}, err
	}
	return v, nil
}

func (r *variantGormRepository) ListByDrinkID(ctx context.Context, drinkID int64) ([]model.DrinkVariant, error) {
	var list []model.DrinkVariant
	if err := r.db.WithContext(ctx).
		Where("drink_id = ?", drinkID).
		Order("volume ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *variantGormRepository) Create(ctx context.Context, v model.DrinkVariant) (model.DrinkVariant, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.DrinkVariant{}, err
	}
	return v, nil
}

func (r *variantGormRepository) Update(ctx context.Context, v model.DrinkVariant) error {
	res := r.db.WithContext(ctx).
		Model(&model.DrinkVariant{}).
		Where("id = ?", v.ID).
		Select("volume", "price", "sale", "img_src").
		Updates(v)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *variantGormRepository) Delete(ctx context.Context, variantID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.DrinkVariant{}, variantID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *variantGormRepository) DeleteByDrinkID(ctx context.Context, drinkID int64) error {
	return r.db.WithContext(ctx).
		Where("drink_id = ?", drinkID).
		Delete(&model.DrinkVariant{}).Error
}

// 在庫が足りるときだけ減らす。条件付きUPDATEなので同時実行でも負にならない
func (r *variantGormRepository) ReserveStock(ctx context.Context, variantID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.DrinkVariant{}).
		Where("id = ? AND quantity >= ?", variantID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し
func (r *variantGormRepository) ReleaseStock(ctx context.Context, variantID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.DrinkVariant{}).
		Where("id = ?", variantID).
		Update("quantity", gorm.Expr("quantity + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫の現在値を設定（管理者）
func (r *variantGormRepository) SetStock(ctx context.Context, variantID int64, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.DrinkVariant{}).
		Where("id = ?", variantID).
		Update("quantity", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
