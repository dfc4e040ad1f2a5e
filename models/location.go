package models

import (
	"time"
)

type LocationType string

const (
	LocationHQ           LocationType = "hq"
	LocationPartner      LocationType = "partner"
	LocationManufacturer LocationType = "manufacturer"
	LocationPlant        LocationType = "plant"
)

// Site holds the columns shared by plants, partners and manufacturers.
type Site struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Code          string    `gorm:"size:50;unique" json:"code"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	Address       string    `gorm:"size:500" json:"address,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	ContactPerson string    `gorm:"size:100" json:"contact_person,omitempty"`
	ContactPhone  string    `gorm:"size:20" json:"contact_phone,omitempty"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Plant struct {
	Site
	Type LocationType `gorm:"size:20;not null;default:plant" json:"type"`
}

type Partner struct {
	Site
	BusinessNumber string `gorm:"size:20" json:"business_number,omitempty"`
}

type Manufacturer struct {
	Site
	BusinessNumber string `gorm:"size:20" json:"business_number,omitempty"`
}

// Location is the resolved current location of a mold, whatever its table.
type Location struct {
	Type      LocationType `json:"type"`
	ID        uint         `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Latitude  *float64     `json:"latitude,omitempty"`
	Longitude *float64     `json:"longitude,omitempty"`
}

func (s Site) AsLocation(t LocationType) *Location {
	return &Location{
		Type:      t,
		ID:        s.ID,
		Code:      s.Code,
		Name:      s.Name,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
	}
}
