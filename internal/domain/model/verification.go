package model

import "time"

// メール確認待ちの登録。確認が済んだら users に昇格して削除する。
type UnverifiedUser struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName     string     `gorm:"type:varchar(255);not null" json:"last_name"`
	MiddleName   string     `gorm:"type:varchar(255)" json:"middle_name"`
	BirthDate    *time.Time `json:"birth_date"`
	Gender       Gender     `gorm:"type:varchar(20)" json:"gender"`
	Phone        string     `gorm:"type:varchar(30)" json:"phone"`

	VerificationToken string    `gorm:"not null;uniqueIndex" json:"-"`
	TokenExpiresAt    time.Time `gorm:"not null" json:"token_expires_at"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// パスワード再設定トークン（有効期限1時間・使い捨て）
type PasswordResetToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsUsed    bool      `gorm:"not null;default:false" json:"is_used"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
