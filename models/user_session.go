package models

import (
	"time"
)

// UserSession records one issued bearer token so it can be listed and revoked.
type UserSession struct {
	ID      uint   `gorm:"primarykey"`
	UserID  uint   `gorm:"not null;index"`
	TokenID string `gorm:"size:64;unique;not null"`
	// RefreshTokenID is the jti of the refresh token paired with TokenID.
	RefreshTokenID string `gorm:"size:64;index"`
	IPAddress      string `gorm:"size:64"`
	UserAgent      string
	Location       string `gorm:"size:200"`
	CreatedAt      time.Time
	ExpiresAt      time.Time `gorm:"index"`
	IsActive       bool      `gorm:"default:true"`
	RevokedAt      *time.Time
	User           User `gorm:"foreignkey:UserID"`
}
