package repository

import (
	"context"
	"time"

	"drinkshop/internal/domain/model"
)

// 管理者用の注文一覧の絞り込み
type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page, limit int) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	Delete(ctx context.Context, orderID int64) error
	DeleteAllByUserID(ctx context.Context, userID int64) error
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error

	//ユーザーが注文したことのある商品ID（重複なし）
	ListDistinctDrinkIDsByUserID(ctx context.Context, userID int64) ([]int64, error)
}

type DeliveryInfoRepository interface {
	Create(ctx context.Context, info model.DeliveryInfo) (model.DeliveryInfo, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.DeliveryInfo, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}

type DeliverySlotRepository interface {
	ListByDate(ctx context.Context, date time.Time) ([]model.DeliverySlot, error)
	FindByID(ctx context.Context, slotID int64) (model.DeliverySlot, error)
	CreateBulk(ctx context.Context, slots []model.DeliverySlot) ([]model.DeliverySlot, error)
	//日付単位で作り直す前の掃除。予約が乗った日付に対して呼ぶのは呼び出し側の責任
	DeleteByDate(ctx context.Context, date time.Time) error

	// 空きがあるときだけ予約数を+1する。満席なら false。
	// 上限に達したら status も unavailable に更新する。
	Reserve(ctx context.Context, slotID int64) (bool, error)
}
