package repository

import (
	"context"
	"errors"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"

	"gorm.io/gorm"
)

type sectionGormRepository struct {
	db *gorm.DB
}

func NewSectionGormRepository(db *gorm.DB) repo.SectionRepository {
	return &sectionGormRepository{db: db}
}

func (r *sectionGormRepository) List(ctx context.Context) ([]model.Section, error) {
	var list []model.Section
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *sectionGormRepository) FindByID(ctx context.Context, sectionID string) (model.Section, error) {
	var s model.Section
	err := r.db.WithContext(ctx).Where("id = ?", sectionID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Section{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Section{}, err
	}
	return s, nil
}

func (r *sectionGormRepository) Create(ctx context.Context, s model.Section) (model.Section, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Section{}, repo.ErrConflict
		}
		return model.Section{}, err
	}
	return s, nil
}

func (r *sectionGormRepository) Update(ctx context.Context, s model.Section) error {
	res := r.db.WithContext(ctx).
		Model(&model.Section{}).
		Where("id = ?", s.ID).
		Select("title", "img_src").
		Updates(s)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *sectionGormRepository) Delete(ctx context.Context, sectionID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", sectionID).
		Delete(&model.Section{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type drinkGormRepository struct {
	db *gorm.DB
}

func NewDrinkGormRepository(db *gorm.DB) repo.DrinkRepository {
	return &drinkGormRepository{db: db}
}

func (r *drinkGormRepository) ListBySection(ctx context.Context, sectionID string) ([]model.Drink, error) {
	var list []model.Drink
	if err := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *drinkGormRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Drink, error) {
	if len(ids) == 0 {
		return []model.Drink{}, nil
	}
	var list []model.Drink
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *drinkGormRepository) FindByID(ctx context.Context, drinkID int64) (model.Drink, error) {
	var d model.Drink
	err := r.db.WithContext(ctx).First(&d, drinkID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Drink{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Drink{}, err
	}
	return d, nil
}

func (r *drinkGormRepository) Create(ctx context.Context, d model.Drink) (model.Drink, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return model.Drink{}, err
	}
	return d, nil
}

// nilでないフィールドだけ更新。GlobalSaleはSetGlobalSaleが立っている時だけ触る
// （nilへ戻す更新があり得るため）。
func (r *drinkGormRepository) Update(ctx context.Context, drinkID int64, upd repo.DrinkUpdate) error {
	values := map[string]interface{}{}
	if upd.Name != nil {
		values["name"] = *upd.Name
	}
	if upd.ImgSrc != nil {
		values["img_src"] = *upd.ImgSrc
	}
	if upd.Ingredients != nil {
		values["ingredients"] = *upd.Ingredients
	}
	if upd.Description != nil {
		values["description"] = *upd.Description
	}
	if upd.SetGlobalSale {
		values["global_sale"] = upd.GlobalSale
	}
	if len(values) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.Drink{}).
		Where("id = ?", drinkID).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *drinkGormRepository) Delete(ctx context.Context, drinkID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Drink{}, drinkID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
