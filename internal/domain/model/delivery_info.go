package model

import "time"

// 配送情報。注文と1対1。
// courier: 住所テキスト＋スロット＋配送料。pickup: 店舗参照はOrder側に持つ。
type DeliveryInfo struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"not null;uniqueIndex" json:"order_id"`

	FullAddress     string     `gorm:"type:varchar(500)" json:"full_address"`
	DeliveryComment string     `gorm:"type:varchar(500)" json:"delivery_comment"`
	DeliveryDate    *time.Time `gorm:"type:date" json:"delivery_date"`
	DeliveryTime    string     `gorm:"type:varchar(20)" json:"delivery_time"`
	TimeSlotID      *int64     `json:"time_slot_id"`

	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(30)" json:"customer_phone"`

	DeliveryPrice int64 `gorm:"not null;default:0" json:"delivery_price"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
