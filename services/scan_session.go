package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Krish-Depani/mold-tracker/errs"
	"github.com/Krish-Depani/mold-tracker/models"
	"github.com/Krish-Depani/mold-tracker/policy"
	"github.com/Krish-Depani/mold-tracker/repository"
	"github.com/Krish-Depani/mold-tracker/utils"
)

const (
	msgScanOK     = "QR scan successful"
	msgScanLowGPS = "QR scan successful but GPS accuracy is low"
)

type MoldStore interface {
	FindActive(ctx context.Context, id uint) (*models.Mold, error)
	Location(ctx context.Context, mold *models.Mold) (*models.Location, error)
}

type ScanSessionStore interface {
	Create(ctx context.Context, session *models.ScanSession, singleActive bool) error
	FindByID(ctx context.Context, id uint) (*models.ScanSession, error)
	FindActiveByUser(ctx context.Context, userID uint) (*models.ScanSession, error)
	Complete(ctx context.Context, id uint, notes string, endedAt time.Time) error
	List(ctx context.Context, f repository.ScanFilter) ([]models.ScanSession, int64, error)
	Stats(ctx context.Context, userID *uint, dr repository.DateRange) (*repository.ScanStats, error)
}

type ScanConfig struct {
	AccuracyThreshold float64
	SessionTTL        time.Duration
	// SingleActive refuses a scan while the user still holds an active session.
	SingleActive bool
}

type ScanSessionManager struct {
	molds    MoldStore
	sessions ScanSessionStore
	cfg      ScanConfig
	now      func() time.Time
}

type Option func(*ScanSessionManager)

// WithClock replaces time.Now as the source of creation and end timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *ScanSessionManager) {
		m.now = now
	}
}

func NewScanSessionManager(molds MoldStore, sessions ScanSessionStore, cfg ScanConfig, opts ...Option) *ScanSessionManager {
	m := &ScanSessionManager{
		molds:    molds,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type ScanInput struct {
	MoldID    uint
	Latitude  *float64
	Longitude *float64
	Accuracy  *float64
	QRCode    string
}

// SessionView is a scan session as returned to clients.
type SessionView struct {
	models.ScanSession
	Mold     *models.MoldSummary `json:"mold,omitempty"`
	User     *models.UserSummary `json:"user,omitempty"`
	Location *models.Location    `json:"location,omitempty"`
	Expired  bool                `json:"expired"`
}

type ScanResult struct {
	Session   *SessionView     `json:"session"`
	Mold      *models.Mold     `json:"mold"`
	Location  *models.Location `json:"location"`
	GPSValid  bool             `json:"gps_valid"`
	DistanceM *float64         `json:"distance_m,omitempty"`
	Message   string           `json:"message"`
}

type SessionPage struct {
	Sessions   []SessionView       `json:"sessions"`
	Pagination repository.PageInfo `json:"pagination"`
}

type MoldHistory struct {
	Mold       *models.MoldSummary `json:"mold"`
	Sessions   []SessionView       `json:"sessions"`
	Pagination repository.PageInfo `json:"pagination"`
}

type ListInput struct {
	MoldID   *uint
	UserID   *uint
	Status   models.ScanStatus
	Range    repository.DateRange
	SortBy   string
	SortDesc bool
	Page     repository.Pagination
}

func (m *ScanSessionManager) view(s *models.ScanSession, loc *models.Location) SessionView {
	v := SessionView{
		ScanSession: *s,
		Mold:        s.Mold.Summary(),
		Location:    loc,
		Expired:     s.Expired(m.now()),
	}
	if s.User != nil {
		v.User = s.User.Summary()
	}
	return v
}

func (m *ScanSessionManager) location(ctx context.Context, s *models.ScanSession) (*models.Location, error) {
	if s.Mold == nil {
		return nil, nil
	}
	return m.molds.Location(ctx, s.Mold)
}

func (m *ScanSessionManager) views(rows []models.ScanSession) []SessionView {
	out := make([]SessionView, 0, len(rows))
	for i := range rows {
		out = append(out, m.view(&rows[i], nil))
	}
	return out
}

// Scan opens a session for p against an active mold.
func (m *ScanSessionManager) Scan(ctx context.Context, p policy.Principal, in ScanInput) (*ScanResult, error) {
	if in.MoldID == 0 {
		return nil, errs.Validation("VALIDATION_ERROR", "Mold ID is required")
	}

	mold, err := m.molds.FindActive(ctx, in.MoldID)
	if err != nil {
		return nil, err
	}
	loc, err := m.molds.Location(ctx, mold)
	if err != nil {
		return nil, err
	}

	valid := utils.GPSValid(in.Accuracy, m.cfg.AccuracyThreshold)
	qr := in.QRCode
	if qr == "" {
		qr = mold.ScanCode()
	}

	now := m.now()
	session := &models.ScanSession{
		SessionToken:  uuid.NewString(),
		MoldID:        mold.ID,
		UserID:        p.ID,
		QRCode:        qr,
		ScanLatitude:  in.Latitude,
		ScanLongitude: in.Longitude,
		ScanAccuracy:  in.Accuracy,
		IsGPSValid:    valid,
		Status:        models.ScanActive,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.cfg.SessionTTL),
	}
	if err := m.sessions.Create(ctx, session, m.cfg.SingleActive); err != nil {
		return nil, err
	}

	stored, err := m.sessions.FindByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	view := m.view(stored, loc)

	result := &ScanResult{
		Session:  &view,
		Mold:     mold,
		Location: loc,
		GPSValid: valid,
		Message:  msgScanOK,
	}
	if !valid {
		result.Message = msgScanLowGPS
	}
	if in.Latitude != nil && in.Longitude != nil && loc != nil && loc.Latitude != nil && loc.Longitude != nil {
		d := utils.DistanceMeters(*in.Latitude, *in.Longitude, *loc.Latitude, *loc.Longitude)
		result.DistanceM = &d
	}

	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"mold_id":    mold.ID,
		"user_id":    p.ID,
		"gps_valid":  valid,
	}).Info("scan session started")
	return result, nil
}

// EndSession completes an active session owned by p. Sessions that are
// missing, owned by someone else or already completed are all reported as
// ErrActiveSessionNotFound.
func (m *ScanSessionManager) EndSession(ctx context.Context, p policy.Principal, id uint, notes string) (*SessionView, error) {
	session, err := m.sessions.FindByID(ctx, id)
	if errs.IsKind(err, errs.KindNotFound) {
		return nil, errs.ErrActiveSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if policy.CanMutate(p, session.UserID) != policy.Allow || session.Status != models.ScanActive {
		return nil, errs.ErrActiveSessionNotFound
	}

	if err := m.sessions.Complete(ctx, id, notes, m.now()); err != nil {
		return nil, err
	}

	session, err = m.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"session_id": id, "user_id": p.ID}).Info("scan session completed")
	v := m.view(session, nil)
	return &v, nil
}

// ActiveSession returns p's most recent active session, or nil when there is none.
func (m *ScanSessionManager) ActiveSession(ctx context.Context, p policy.Principal) (*SessionView, error) {
	session, err := m.sessions.FindActiveByUser(ctx, p.ID)
	if err != nil || session == nil {
		return nil, err
	}
	loc, err := m.location(ctx, session)
	if err != nil {
		return nil, err
	}
	v := m.view(session, loc)
	return &v, nil
}

func (m *ScanSessionManager) GetSession(ctx context.Context, p policy.Principal, id uint) (*SessionView, error) {
	session, err := m.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch policy.CanView(p, session.UserID) {
	case policy.Deny:
		return nil, errs.ErrSessionForbidden
	case policy.Hide:
		return nil, errs.ErrSessionNotFound
	}

	loc, err := m.location(ctx, session)
	if err != nil {
		return nil, err
	}
	v := m.view(session, loc)
	return &v, nil
}

func (m *ScanSessionManager) List(ctx context.Context, p policy.Principal, in ListInput) (*SessionPage, error) {
	if in.SortBy != "" && !repository.ValidScanSort(in.SortBy) {
		return nil, errs.Validation("INVALID_SORT", "Unsupported sort field: "+in.SortBy)
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, errs.Validation("INVALID_STATUS", "Unsupported status: "+string(in.Status))
	}

	scope := policy.ListScope(p, in.UserID)
	page := in.Page.Normalize()
	rows, total, err := m.sessions.List(ctx, repository.ScanFilter{
		MoldID:   in.MoldID,
		UserID:   scope.OwnerID,
		Status:   in.Status,
		Range:    in.Range,
		SortBy:   in.SortBy,
		SortDesc: in.SortDesc,
		Page:     page,
	})
	if err != nil {
		return nil, err
	}
	return &SessionPage{
		Sessions:   m.views(rows),
		Pagination: repository.NewPageInfo(page, total),
	}, nil
}

// MoldHistory lists every scan of an active mold, newest first.
func (m *ScanSessionManager) MoldHistory(ctx context.Context, moldID uint, page repository.Pagination) (*MoldHistory, error) {
	mold, err := m.molds.FindActive(ctx, moldID)
	if err != nil {
		return nil, err
	}

	page = page.Normalize()
	rows, total, err := m.sessions.List(ctx, repository.ScanFilter{
		MoldID:   &mold.ID,
		SortBy:   "created_at",
		SortDesc: true,
		Page:     page,
	})
	if err != nil {
		return nil, err
	}
	return &MoldHistory{
		Mold:       mold.Summary(),
		Sessions:   m.views(rows),
		Pagination: repository.NewPageInfo(page, total),
	}, nil
}

func (m *ScanSessionManager) Statistics(ctx context.Context, p policy.Principal, dr repository.DateRange) (*repository.ScanStats, error) {
	scope := policy.ListScope(p, nil)
	return m.sessions.Stats(ctx, scope.OwnerID, dr)
}
