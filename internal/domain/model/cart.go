package model

import "time"

// カート。持ち主はユーザーIDかゲストのセッションキーのどちらか一方だけ。
// ユーザーに紐付けた時点で session_key はNULLにする。
type Cart struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *int64  `gorm:"index" json:"user_id"`
	SessionKey *string `gorm:"type:varchar(64);uniqueIndex" json:"-"`

	// 明細から再計算するキャッシュ。明細を触る操作は必ず更新する。
	Subtotal int64 `gorm:"not null;default:0" json:"cart_subtotal"`
	Discount int64 `gorm:"not null;default:0" json:"cart_discount"`
	Total    int64 `gorm:"not null;default:0" json:"cart_total"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
