package model

import "time"

// カートの明細。金額3つは投入時点の価格・割引から計算したキャッシュで、
// 商品価格が後で変わっても勝手には追従しない（明細を触る操作が再計算する）。
type CartItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64 `gorm:"not null;index" json:"cart_id"`
	DrinkID   int64 `gorm:"not null;index" json:"drink_id"`
	VariantID int64 `gorm:"not null;index" json:"variant_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`

	ItemSubtotal int64 `gorm:"not null;default:0" json:"item_subtotal"`
	ItemDiscount int64 `gorm:"not null;default:0" json:"item_discount"`
	ItemTotal    int64 `gorm:"not null;default:0" json:"item_total"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
