package models

import (
	"time"

	"gorm.io/datatypes"
)

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

type InspectionType string

const (
	InspectionRegular  InspectionType = "regular"
	InspectionFitting  InspectionType = "fitting"
	InspectionCleaning InspectionType = "cleaning"
)

type Condition string

const (
	ConditionGood     Condition = "good"
	ConditionFair     Condition = "fair"
	ConditionPoor     Condition = "poor"
	ConditionCritical Condition = "critical"
)

// Inspection holds the review workflow columns shared by both record kinds.
type Inspection struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	MoldID       uint           `gorm:"not null;index" json:"mold_id"`
	InspectorID  uint           `gorm:"not null;index" json:"inspector_id"`
	CheckItems   datatypes.JSON `json:"check_items"`
	Findings     string         `gorm:"type:text" json:"findings,omitempty"`
	ActionsTaken string         `gorm:"type:text" json:"actions_taken,omitempty"`
	Images       datatypes.JSON `json:"images,omitempty"`
	GPSLatitude  *float64       `json:"gps_latitude,omitempty"`
	GPSLongitude *float64       `json:"gps_longitude,omitempty"`
	Status       ReviewStatus   `gorm:"size:20;not null;default:pending;index" json:"status"`
	ApprovedBy   *uint          `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time     `json:"approved_at,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type DailyCheck struct {
	Inspection
	CheckDate          time.Time `gorm:"not null;index" json:"check_date"`
	ProductionQuantity int64     `gorm:"default:0" json:"production_quantity"`
}

type RegularInspection struct {
	Inspection
	InspectionDate    time.Time      `gorm:"not null;index" json:"inspection_date"`
	InspectionType    InspectionType `gorm:"size:20;not null;index" json:"inspection_type"`
	OverallStatus     Condition      `gorm:"size:20" json:"overall_status,omitempty"`
	NextInspectionDue *time.Time     `json:"next_inspection_due,omitempty"`
}
