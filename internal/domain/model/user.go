package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderUnspecified Gender = "unspecified"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`

	FirstName  string     `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName   string     `gorm:"type:varchar(255);not null" json:"last_name"`
	MiddleName string     `gorm:"type:varchar(255)" json:"middle_name"`
	BirthDate  *time.Time `json:"birth_date"`
	Gender     Gender     `gorm:"type:varchar(20)" json:"gender"`
	Phone      string     `gorm:"type:varchar(30)" json:"phone"`

	Role        Role       `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
