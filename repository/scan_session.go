package repository

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/errs"
	"github.com/Krish-Depani/mold-tracker/models"
)

var scanSortColumns = map[string]string{
	"created_at": "scan_sessions.created_at",
	"expires_at": "scan_sessions.expires_at",
	"ended_at":   "scan_sessions.ended_at",
	"id":         "scan_sessions.id",
}

// ValidScanSort reports whether column can be used as a sort key.
func ValidScanSort(column string) bool {
	_, ok := scanSortColumns[column]
	return ok
}

type ScanFilter struct {
	MoldID   *uint
	UserID   *uint
	Status   models.ScanStatus
	Range    DateRange
	SortBy   string
	SortDesc bool
	Page     Pagination
}

type StatusCount struct {
	Status models.ScanStatus `json:"status"`
	Count  int64             `json:"count"`
}

type GPSCount struct {
	IsGPSValid bool  `json:"is_gps_valid"`
	Count      int64 `json:"count"`
}

type UserCount struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Count    int64  `json:"count"`
}

type ScanStats struct {
	TotalScans int64         `json:"total_scans"`
	ByStatus   []StatusCount `json:"by_status"`
	GPSStats   []GPSCount    `json:"gps_stats"`
	TopUsers   []UserCount   `json:"top_users"`
}

type ScanSessionRepository struct {
	db *gorm.DB
}

func NewScanSessionRepository(db *gorm.DB) *ScanSessionRepository {
	return &ScanSessionRepository{db: db}
}

// Create inserts session. With singleActive set, an active insert is refused
// when the user already holds an active session; the partial unique index
// created by the migration closes the race between the check and the insert.
func (r *ScanSessionRepository) Create(ctx context.Context, session *models.ScanSession, singleActive bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if singleActive && session.Status == models.ScanActive {
			var count int64
			if err := tx.Model(&models.ScanSession{}).
				Where("user_id = ? AND status = ?", session.UserID, models.ScanActive).
				Count(&count).Error; err != nil {
				return pkgerrors.Wrap(err, "count active sessions")
			}
			if count > 0 {
				return errs.ErrActiveSessionExists
			}
		}
		return tx.Create(session).Error
	})
	if singleActive && isUniqueViolation(err) && r.holdsActive(ctx, session.UserID) {
		return errs.ErrActiveSessionExists
	}
	if err != nil {
		if _, ok := errs.As(err); ok {
			return err
		}
		return pkgerrors.Wrap(err, "create scan session")
	}
	return nil
}

func (r *ScanSessionRepository) holdsActive(ctx context.Context, userID uint) bool {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ScanSession{}).
		Where("user_id = ? AND status = ?", userID, models.ScanActive).
		Count(&count).Error
	return err == nil && count > 0
}

func (r *ScanSessionRepository) FindByID(ctx context.Context, id uint) (*models.ScanSession, error) {
	var session models.ScanSession
	err := r.db.WithContext(ctx).Preload("Mold").Preload("User").First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrSessionNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "find scan session %d", id)
	}
	return &session, nil
}

// FindActiveByUser returns the user's most recent active session, or nil.
func (r *ScanSessionRepository) FindActiveByUser(ctx context.Context, userID uint) (*models.ScanSession, error) {
	var session models.ScanSession
	err := r.db.WithContext(ctx).Preload("Mold").Preload("User").
		Where("user_id = ? AND status = ?", userID, models.ScanActive).
		Order("created_at DESC, id DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "find active session for user %d", userID)
	}
	return &session, nil
}

// Complete moves an active session to completed. Notes are replaced only when
// non-empty. It returns ErrActiveSessionNotFound if the session is no longer active.
func (r *ScanSessionRepository) Complete(ctx context.Context, id uint, notes string, endedAt time.Time) error {
	updates := map[string]interface{}{
		"status":   models.ScanCompleted,
		"ended_at": endedAt,
	}
	if notes != "" {
		updates["notes"] = notes
	}

	result := r.db.WithContext(ctx).Model(&models.ScanSession{}).
		Where("id = ? AND status = ?", id, models.ScanActive).
		Updates(updates)
	if result.Error != nil {
		return pkgerrors.Wrapf(result.Error, "complete scan session %d", id)
	}
	if result.RowsAffected == 0 {
		return errs.ErrActiveSessionNotFound
	}
	return nil
}

func (r *ScanSessionRepository) List(ctx context.Context, f ScanFilter) ([]models.ScanSession, int64, error) {
	base := func() *gorm.DB {
		return r.filtered(r.db.WithContext(ctx).Model(&models.ScanSession{}), f.MoldID, f.UserID, f.Status, f.Range)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "count scan sessions")
	}

	column, ok := scanSortColumns[f.SortBy]
	if !ok {
		column = scanSortColumns["created_at"]
	}
	direction := " ASC"
	if f.SortDesc {
		direction = " DESC"
	}

	page := f.Page.Normalize()
	sessions := make([]models.ScanSession, 0, page.Limit)
	err := base().Preload("Mold").Preload("User").
		Order(column + direction).
		Order("scan_sessions.id" + direction).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "list scan sessions")
	}
	return sessions, total, nil
}

func (r *ScanSessionRepository) Stats(ctx context.Context, userID *uint, dr DateRange) (*ScanStats, error) {
	base := func() *gorm.DB {
		return r.filtered(r.db.WithContext(ctx).Model(&models.ScanSession{}), nil, userID, "", dr)
	}

	stats := &ScanStats{
		ByStatus: make([]StatusCount, 0),
		GPSStats: make([]GPSCount, 0),
		TopUsers: make([]UserCount, 0),
	}

	if err := base().Count(&stats.TotalScans).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "count scans")
	}

	if err := base().
		Select("scan_sessions.status AS status, COUNT(scan_sessions.id) AS count").
		Group("scan_sessions.status").
		Order("scan_sessions.status").
		Scan(&stats.ByStatus).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "group scans by status")
	}

	if err := base().
		Select("scan_sessions.is_gps_valid AS is_gps_valid, COUNT(scan_sessions.id) AS count").
		Group("scan_sessions.is_gps_valid").
		Order("scan_sessions.is_gps_valid").
		Scan(&stats.GPSStats).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "group scans by gps validity")
	}

	if err := base().
		Select("scan_sessions.user_id AS user_id, users.username AS username, users.name AS name, COUNT(scan_sessions.id) AS count").
		Joins("JOIN users ON users.id = scan_sessions.user_id").
		Group("scan_sessions.user_id, users.username, users.name").
		Order("count DESC, scan_sessions.user_id ASC").
		Limit(10).
		Scan(&stats.TopUsers).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "top scanning users")
	}

	return stats, nil
}

func (r *ScanSessionRepository) filtered(q *gorm.DB, moldID, userID *uint, status models.ScanStatus, dr DateRange) *gorm.DB {
	if moldID != nil {
		q = q.Where("scan_sessions.mold_id = ?", *moldID)
	}
	if userID != nil {
		q = q.Where("scan_sessions.user_id = ?", *userID)
	}
	if status != "" {
		q = q.Where("scan_sessions.status = ?", status)
	}
	return dr.apply(q, "scan_sessions.created_at")
}
