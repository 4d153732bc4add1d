package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"column:username;size:255;not null;uniqueIndex" json:"username"`
	Email        string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"password_hash"`
	FirstName    string `gorm:"column:first_name;size:255;not null" json:"first_name"`
	LastName     string `gorm:"column:last_name;size:255;not null" json:"last_name"`
	Phone        string `gorm:"column:phone;size:20" json:"phone"`
	Bio          string `gorm:"column:bio;type:text" json:"bio"`
	Role         string `gorm:"column:role;size:50;not null;default:user" json:"role"`

	EmailVerified         bool      `gorm:"column:email_verified;default:false" json:"email_verified"`
	EmailVerificationCode string    `gorm:"size:6" json:"-"`
	VerificationExpiry    time.Time `gorm:"" json:"-"`

	Refresh               string    `gorm:"column:refresh_token;size:255" json:"refresh_token"`
	RefreshTokenExpiredAt time.Time `gorm:"column:refresh_token_expired_at" json:"refresh_token_expired_at"`

	ProfilePicturePath string `gorm:"column:profile_picture_path;size:255" json:"profile_picture_path"`
}

type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null"`
	Token     string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}
