package model

import "time"

// 受け取り店舗
type StoreAddress struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FullAddress  string    `gorm:"type:varchar(500);not null" json:"full_address"`
	Street       string    `gorm:"type:varchar(255);not null" json:"street"`
	House        string    `gorm:"type:varchar(50);not null" json:"house"`
	Floor        string    `gorm:"type:varchar(50)" json:"floor"`
	OpeningHours string    `gorm:"type:varchar(100)" json:"opening_hours"`
	Phone        string    `gorm:"type:varchar(30)" json:"phone"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
