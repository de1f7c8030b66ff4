package model

import "time"

// 配送先住所
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//表示用の完全な住所
	FullAddress string `gorm:"type:varchar(500);not null" json:"full_address"`

	//通り
	Street string `gorm:"type:varchar(255);not null" json:"street"`

	//番地
	House string `gorm:"type:varchar(50);not null" json:"house"`

	//入口・インターホン・階・部屋（任意）
	Entrance  *int    `json:"entrance"`
	Intercom  string  `gorm:"type:varchar(50)" json:"intercom"`
	Floor     *int    `json:"floor"`
	Apartment *int    `json:"apartment"`

	//このユーザーのデフォルト住所か（1ユーザーにつき最大1件）
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
