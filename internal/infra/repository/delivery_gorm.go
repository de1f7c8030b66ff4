package repository

import (
	"context"
	"errors"
	"time"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"

	"gorm.io/gorm"
)

type deliveryInfoGormRepository struct {
	db *gorm.DB
}

func NewDeliveryInfoGormRepository(db *gorm.DB) repo.DeliveryInfoRepository {
	return &deliveryInfoGormRepository{db: db}
}

func (r *deliveryInfoGormRepository) Create(ctx context.Context, info model.DeliveryInfo) (model.DeliveryInfo, error) {
	if err := r.db.WithContext(ctx).Create(&info).Error; err != nil {
		return model.DeliveryInfo{}, err
	}
	return info, nil
}

func (r *deliveryInfoGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.DeliveryInfo, error) {
	var info model.DeliveryInfo
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DeliveryInfo{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DeliveryInfo{}, err
	}
	return info, nil
}

func (r *deliveryInfoGormRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&model.DeliveryInfo{}).Error
}

type deliverySlotGormRepository struct {
	db *gorm.DB
}

func NewDeliverySlotGormRepository(db *gorm.DB) repo.DeliverySlotRepository {
	return &deliverySlotGormRepository{db: db}
}

func (r *deliverySlotGormRepository) ListByDate(ctx context.Context, date time.Time) ([]model.DeliverySlot, error) {
	var slots []model.DeliverySlot
	if err := r.db.WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		Order("id asc").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *deliverySlotGormRepository) FindByID(ctx context.Context, slotID int64) (model.DeliverySlot, error) {
	var s model.DeliverySlot
	err := r.db.WithContext(ctx).First(&s, slotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DeliverySlot{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DeliverySlot{}, err
	}
	return s, nil
}

func (r *deliverySlotGormRepository) CreateBulk(ctx context.Context, slots []model.DeliverySlot) ([]model.DeliverySlot, error) {
	if len(slots) == 0 {
		return slots, nil
	}
	if err := r.db.WithContext(ctx).Create(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *deliverySlotGormRepository) DeleteByDate(ctx context.Context, date time.Time) error {
	return r.db.WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		Delete(&model.DeliverySlot{}).Error
}

// 空きがあるときだけ+1する条件付きUPDATE。
// 同時に予約が走っても max_orders を超えない。
func (r *deliverySlotGormRepository) Reserve(ctx context.Context, slotID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.DeliverySlot{}).
		Where("id = ? AND current_orders < max_orders", slotID).
		Update("current_orders", gorm.Expr("current_orders + 1"))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	//上限に達していたらステータスも落とす
	if err := r.db.WithContext(ctx).
		Model(&model.DeliverySlot{}).
		Where("id = ? AND current_orders >= max_orders", slotID).
		Update("status", model.SlotStatusUnavailable).Error; err != nil {
		return false, err
	}

	return true, nil
}
