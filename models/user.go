package models

import (
	"time"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleHQStaff      Role = "hq_staff"
	RolePartner      Role = "partner"
	RoleManufacturer Role = "manufacturer"
	RoleWorker       Role = "worker"
	RoleViewer       Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHQStaff, RolePartner, RoleManufacturer, RoleWorker, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	Username       string     `gorm:"size:50;unique;not null" json:"username"`
	PasswordHash   string     `gorm:"not null" json:"-"`
	Name           string     `gorm:"size:100;not null" json:"name"`
	Email          string     `gorm:"size:100;unique;not null" json:"email"`
	Phone          string     `gorm:"size:20" json:"phone,omitempty"`
	Role           Role       `gorm:"size:20;not null;default:viewer;index" json:"role"`
	PartnerID      *uint      `gorm:"index" json:"partner_id,omitempty"`
	ManufacturerID *uint      `gorm:"index" json:"manufacturer_id,omitempty"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// UserSummary is the subset of a user attached to scan and inspection rows.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

func (u *User) Summary() *UserSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role}
}
