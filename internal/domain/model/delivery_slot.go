package model

import "time"

type DeliverySlotStatus string

const (
	SlotStatusAvailable   DeliverySlotStatus = "available"
	SlotStatusLimited     DeliverySlotStatus = "limited"
	SlotStatusUnavailable DeliverySlotStatus = "unavailable"
)

// 配達の時間帯枠。CurrentOrders が MaxOrders に達したら unavailable。
type DeliverySlot struct {
	ID            int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	Date          time.Time          `gorm:"type:date;not null;index" json:"date"`
	TimeSlot      string             `gorm:"type:varchar(20);not null" json:"time_slot"`
	MaxOrders     int                `gorm:"not null;default:5" json:"max_orders"`
	CurrentOrders int                `gorm:"not null;default:0" json:"current_orders"`
	Status        DeliverySlotStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
}
