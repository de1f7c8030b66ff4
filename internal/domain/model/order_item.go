package model

import "time"

// 注文明細。価格・割引は注文時点の値のコピー（スナップショット）。
// 後からカタログ側の値が変わっても、この行は変えない。
type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"not null;index" json:"order_id"`
	DrinkID   int64 `gorm:"not null;index" json:"drink_id"`
	VariantID int64 `gorm:"not null;index" json:"variant_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`

	PriceOriginal int64 `gorm:"not null" json:"price_original"`
	PriceFinal    int64 `gorm:"not null" json:"price_final"`
	Sale          int   `gorm:"not null;default:0" json:"sale"`
	Volume        int   `gorm:"not null;default:0" json:"volume"`

	ItemSubtotal int64 `gorm:"not null" json:"item_subtotal"`
	ItemDiscount int64 `gorm:"not null" json:"item_discount"`
	ItemTotal    int64 `gorm:"not null" json:"item_total"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
