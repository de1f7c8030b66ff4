package model

import "time"

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type DeliveryType string

const (
	DeliveryTypeCourier DeliveryType = "courier"
	DeliveryTypePickup  DeliveryType = "pickup"
)

// 注文。作成後はステータス以外は不変。
type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	Subtotal int64 `gorm:"not null" json:"order_subtotal"`
	Discount int64 `gorm:"not null" json:"order_discount"`
	Total    int64 `gorm:"not null" json:"order_total"`

	Status       OrderStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	DeliveryType DeliveryType `gorm:"type:varchar(20);not null" json:"delivery_type"`

	// courierなら address_id、pickupなら store_address_id（排他）
	AddressID      *int64 `json:"address_id"`
	StoreAddressID *int64 `json:"store_address_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
