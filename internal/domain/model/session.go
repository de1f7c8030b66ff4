package model

import "time"

// リフレッシュトークン1件＝セッション1件。
// 平文は保存せず sha256 のhashだけを持つ。
type Session struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	TokenHash string    `gorm:"not null;uniqueIndex" json:"-"`
	UserAgent string    `gorm:"type:varchar(500)" json:"user_agent"`
	IPAddress string    `gorm:"type:varchar(64)" json:"ip_address"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
