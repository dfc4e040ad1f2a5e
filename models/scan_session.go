package models

import (
	"time"
)

type ScanStatus string

const (
	ScanActive    ScanStatus = "active"
	ScanCompleted ScanStatus = "completed"
)

func (s ScanStatus) Valid() bool {
	return s == ScanActive || s == ScanCompleted
}

// ScanSession is one QR scan of a mold by a user. Rows are never deleted.
type ScanSession struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	SessionToken  string     `gorm:"size:64;unique;not null" json:"session_token"`
	MoldID        uint       `gorm:"not null;index" json:"mold_id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	QRCode        string     `gorm:"size:100;not null" json:"qr_code"`
	ScanLatitude  *float64   `json:"scan_latitude"`
	ScanLongitude *float64   `json:"scan_longitude"`
	ScanAccuracy  *float64   `json:"scan_accuracy"`
	IsGPSValid    bool       `gorm:"not null;default:false" json:"is_gps_valid"`
	Status        ScanStatus `gorm:"size:20;not null;default:active;index" json:"status"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	EndedAt       *time.Time `json:"ended_at"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`

	Mold *Mold `gorm:"foreignKey:MoldID" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (s *ScanSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
