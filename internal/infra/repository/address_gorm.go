package repository

import (
	"context"
	"errors"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"

	"gorm.io/gorm"
)

type addressGormRepository struct {
	db *gorm.DB
}

// DI
func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

// 住所を作成
func (r *addressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return model.Address{}, err
	}
	return address, nil
}

// ユーザーの住所一覧を返す（デフォルトが先頭）
func (r *addressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var list []model.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// 住所IDで1件取得
func (r *addressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	var a model.Address
	err := r.db.WithContext(ctx).First(&a, addressID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Address{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Address{}, err
	}
	return a, nil
}

// nilでないフィールドだけ更新
func (r *addressGormRepository) Update(ctx context.Context, addressID int64, upd repo.AddressUpdate) error {
	values := map[string]interface{}{}
	if upd.FullAddress != nil {
		values["full_address"] = *upd.FullAddress
	}
	if upd.Street != nil {
		values["street"] = *upd.Street
	}
	if upd.House != nil {
		values["house"] = *upd.House
	}
	if upd.Entrance != nil {
		values["entrance"] = *upd.Entrance
	}
	if upd.Intercom != nil {
		values["intercom"] = *upd.Intercom
	}
	if upd.Floor != nil {
		values["floor"] = *upd.Floor
	}
	if upd.Apartment != nil {
		values["apartment"] = *upd.Apartment
	}
	if upd.IsDefault != nil {
		values["is_default"] = *upd.IsDefault
	}
	if len(values) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.Address{}).
		Where("id = ?", addressID).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 住所を削除
func (r *addressGormRepository) Delete(ctx context.Context, addressID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", addressID).
		Delete(&model.Address{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *addressGormRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Address{}).Error
}

// 同じ（通り・番地・部屋）の住所が既にあるか
func (r *addressGormRepository) ExistsDuplicate(ctx context.Context, userID int64, street, house string, apartment *int) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Address{}).
		Where("user_id = ? AND street = ? AND house = ?", userID, street, house)

	if apartment != nil {
		q = q.Where("apartment = ?", *apartment)
	} else {
		q = q.Where("apartment IS NULL")
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *addressGormRepository) FindDefaultByUserID(ctx context.Context, userID int64) (model.Address, error) {
	var a model.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = TRUE", userID).
		First(&a).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Address{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Address{}, err
	}
	return a, nil
}

// 一番新しく作られた住所（デフォルト削除後の昇格先）
func (r *addressGormRepository) FindLatestByUserID(ctx context.Context, userID int64) (model.Address, error) {
	var a model.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&a).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Address{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Address{}, err
	}
	return a, nil
}

func (r *addressGormRepository) ClearDefault(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Address{}).
		Where("user_id = ? AND is_default = TRUE", userID).
		Update("is_default", false).Error
}

// デフォルト住所を切り替える
func (r *addressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//指定住所がこのユーザーのものか確認
		var count int64
		if err := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repo.ErrNotFound
		}

		//そのユーザーのdefaultを全て false
		if err := tx.Model(&model.Address{}).
			Where("user_id = ? AND is_default = TRUE", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}

		//指定住所だけ true
		result := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
