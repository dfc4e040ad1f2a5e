package models

import (
	"time"
)

type MoldStatus string

const (
	MoldActive      MoldStatus = "active"
	MoldMaintenance MoldStatus = "maintenance"
	MoldRepair      MoldStatus = "repair"
	MoldStandby     MoldStatus = "standby"
	MoldTransfer    MoldStatus = "transfer"
	MoldScrapped    MoldStatus = "scrapped"
)

type Mold struct {
	ID                    uint         `gorm:"primarykey" json:"id"`
	MoldCode              string       `gorm:"size:50;unique;not null" json:"mold_code"`
	Name                  string       `gorm:"size:200;not null" json:"name"`
	PartNumber            string       `gorm:"size:100" json:"part_number,omitempty"`
	PartName              string       `gorm:"size:200" json:"part_name,omitempty"`
	VehicleModel          string       `gorm:"size:100" json:"vehicle_model,omitempty"`
	Status                MoldStatus   `gorm:"size:20;not null;default:active;index" json:"status"`
	QRCode                *string      `gorm:"size:100;unique" json:"qr_code,omitempty"`
	CurrentLocationType   LocationType `gorm:"size:20;index:idx_molds_location" json:"current_location_type,omitempty"`
	CurrentLocationID     *uint        `gorm:"index:idx_molds_location" json:"current_location_id,omitempty"`
	GPSLatitude           *float64     `json:"gps_latitude,omitempty"`
	GPSLongitude          *float64     `json:"gps_longitude,omitempty"`
	GPSAccuracy           *float64     `json:"gps_accuracy,omitempty"`
	GPSLastUpdated        *time.Time   `json:"gps_last_updated,omitempty"`
	PartnerID             *uint        `gorm:"index" json:"partner_id,omitempty"`
	ManufacturerID        *uint        `gorm:"index" json:"manufacturer_id,omitempty"`
	ProductionCount       int64        `gorm:"default:0" json:"production_count"`
	LastDailyCheck        *time.Time   `json:"last_daily_check,omitempty"`
	LastRegularInspection *time.Time   `json:"last_regular_inspection,omitempty"`
	NextInspectionDue     *time.Time   `json:"next_inspection_due,omitempty"`
	IsActive              bool         `gorm:"default:true;index" json:"is_active"`
	CreatedBy             *uint        `json:"created_by,omitempty"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// MoldSummary is the subset of a mold attached to scan session rows.
type MoldSummary struct {
	ID       uint       `json:"id"`
	MoldCode string     `json:"mold_code"`
	Name     string     `json:"name"`
	Status   MoldStatus `json:"status"`
}

func (m *Mold) Summary() *MoldSummary {
	if m == nil || m.ID == 0 {
		return nil
	}
	return &MoldSummary{ID: m.ID, MoldCode: m.MoldCode, Name: m.Name, Status: m.Status}
}

// ScanCode is the value recorded on a scan when the client sends none.
func (m *Mold) ScanCode() string {
	if m.QRCode != nil && *m.QRCode != "" {
		return *m.QRCode
	}
	return m.MoldCode
}
