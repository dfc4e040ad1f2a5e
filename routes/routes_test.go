package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/controllers"
	"github.com/Krish-Depani/mold-tracker/models"
	"github.com/Krish-Depani/mold-tracker/repository"
	"github.com/Krish-Depani/mold-tracker/services"
	"github.com/Krish-Depani/mold-tracker/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]uint
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]uint)}
}

func (m *memTokens) SetSession(_ context.Context, tokenID string, userID uint, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenID] = userID
	return nil
}

func (m *memTokens) GetSession(_ context.Context, tokenID string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[tokenID]
	if !ok {
		return 0, errors.New("session not found")
	}
	return id, nil
}

func (m *memTokens) DeleteSession(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, tokenID)
	return nil
}

type stubLocator struct{}

func (stubLocator) Locate(string) string { return "Local" }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type api struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *memTokens
}

func newAPI(t *testing.T) *api {
	db := testutil.NewDB(t, false)
	tokens := newMemTokens()

	molds := repository.NewMoldRepository(db)
	manager := services.NewScanSessionManager(molds, repository.NewScanSessionRepository(db), services.ScanConfig{
		AccuracyThreshold: 50,
		SessionTTL:        8 * time.Hour,
	})
	recorder := services.NewInspectionRecorder(molds, repository.NewInspectionRepository(db), nil)

	router := SetupRoutes(Controllers{
		Auth:        controllers.NewAuthController(db, tokens, stubLocator{}, "test-secret", time.Hour, 7*24*time.Hour),
		User:        controllers.NewUserController(db),
		ScanSession: controllers.NewScanSessionController(manager),
		Inspection:  controllers.NewInspectionController(recorder),
	}, Options{CORSOrigin: "http://localhost:3000", DB: db})

	return &api{t: t, db: db, router: router, tokens: tokens}
}

func (a *api) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *api) login(username string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": testutil.Password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(a.t, data.Token)
	return data.Token
}

type sessionJSON struct {
	ID         uint       `json:"id"`
	UserID     uint       `json:"user_id"`
	Status     string     `json:"status"`
	Notes      string     `json:"notes"`
	IsGPSValid bool       `json:"is_gps_valid"`
	EndedAt    *time.Time `json:"ended_at"`
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	w, env := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, env.Status)
	var data struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ok", data.Status)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	a := newAPI(t)
	w, env := a.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)
	testutil.CreateUser(t, a.db, "worker01", models.RoleWorker)
	disabled := testutil.CreateUser(t, a.db, "gone01", models.RoleWorker)
	testutil.Deactivate(t, a.db, disabled)

	w, env := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "worker01", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	w, _ = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "gone01", "password": testutil.Password})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "w"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = a.do(http.MethodGet, "/api/auth/me", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := a.login("worker01")
	w, env = a.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"username":"worker01"`)
	assert.NotContains(t, string(env.Data), "password")

	w, env = a.do(http.MethodGet, "/api/auth/sessions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"current_session":true`)
	assert.Contains(t, string(env.Data), `"location":"Local"`)

	w, _ = a.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked token is rejected")

	var revoked models.UserSession
	require.NoError(t, a.db.First(&revoked).Error)
	assert.False(t, revoked.IsActive)
	assert.NotNil(t, revoked.RevokedAt)
}

type tokenPairJSON struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func TestRefreshAndChangePassword(t *testing.T) {
	a := newAPI(t)
	testutil.CreateUser(t, a.db, "worker01", models.RoleWorker)

	w, env := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "worker01", "password": testutil.Password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var issued tokenPairJSON
	require.NoError(t, json.Unmarshal(env.Data, &issued))
	require.NotEmpty(t, issued.RefreshToken)

	w, env = a.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": issued.Token})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "access tokens cannot refresh")
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)

	w, _ = a.do(http.MethodGet, "/api/auth/me", issued.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens cannot authenticate")

	w, _ = a.do(http.MethodPost, "/api/auth/refresh", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = a.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": issued.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rotated tokenPairJSON
	require.NoError(t, json.Unmarshal(env.Data, &rotated))
	assert.NotEqual(t, issued.Token, rotated.Token)
	assert.NotEqual(t, issued.RefreshToken, rotated.RefreshToken)

	w, _ = a.do(http.MethodGet, "/api/auth/me", rotated.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = a.do(http.MethodGet, "/api/auth/me", issued.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "replaced access token is revoked")
	w, _ = a.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": issued.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens are single use")

	var logins int64
	require.NoError(t, a.db.Model(&models.UserSession{}).Count(&logins).Error)
	assert.Equal(t, int64(1), logins, "refresh rotates the existing login")

	w, env = a.do(http.MethodPut, "/api/auth/password", rotated.Token, gin.H{"current_password": "wrong", "new_password": "newpassword1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PASSWORD", env.Error.Code)

	w, _ = a.do(http.MethodPut, "/api/auth/password", rotated.Token, gin.H{"current_password": testutil.Password, "new_password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodPut, "/api/auth/password", "", gin.H{"current_password": testutil.Password, "new_password": "newpassword1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = a.do(http.MethodPut, "/api/auth/password", rotated.Token, gin.H{"current_password": testutil.Password, "new_password": "newpassword1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "worker01", "password": testutil.Password})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "worker01", "password": "newpassword1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodPost, "/api/auth/logout", rotated.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = a.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": rotated.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "logout revokes the paired refresh token")
}

func TestScanSessionEndpoints(t *testing.T) {
	a := newAPI(t)
	w1 := testutil.CreateUser(t, a.db, "worker01", models.RoleWorker)
	testutil.CreateUser(t, a.db, "worker02", models.RoleWorker)
	testutil.CreateUser(t, a.db, "hq01", models.RoleHQStaff)
	plant := testutil.CreatePlant(t, a.db, "P1", 35.5384, 129.3114)
	mold := testutil.CreateMold(t, a.db, "M1", plant)

	t1 := a.login("worker01")
	t2 := a.login("worker02")
	hq := a.login("hq01")

	w, env := a.do(http.MethodPost, "/api/qr-sessions/scan", t1, gin.H{"latitude": 35.5, "longitude": 129.3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Mold ID is required", env.Message)

	w, env = a.do(http.MethodPost, "/api/qr-sessions/scan", t1, gin.H{"mold_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MOLD_NOT_FOUND", env.Error.Code)

	w, env = a.do(http.MethodPost, "/api/qr-sessions/scan", t1, gin.H{"mold_id": mold.ID, "latitude": 35.5384, "longitude": 129.3114, "accuracy": 30})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "QR scan successful", env.Message)
	var first struct {
		Session  sessionJSON `json:"session"`
		GPSValid bool        `json:"gps_valid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.True(t, first.GPSValid)
	assert.Equal(t, "active", first.Session.Status)

	w, env = a.do(http.MethodPost, "/api/qr-sessions/scan", t1, gin.H{"mold_id": mold.ID, "accuracy": 80})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "QR scan successful but GPS accuracy is low", env.Message)
	var second struct {
		Session sessionJSON `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.False(t, second.Session.IsGPSValid)

	endPath := fmt.Sprintf("/api/qr-sessions/%d/end", first.Session.ID)
	w, _ = a.do(http.MethodPatch, endPath, t2, gin.H{"notes": "not mine"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(http.MethodPatch, endPath, t1, gin.H{"notes": "ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ended sessionJSON
	require.NoError(t, json.Unmarshal(env.Data, &ended))
	assert.Equal(t, "completed", ended.Status)
	assert.Equal(t, "ok", ended.Notes)
	assert.NotNil(t, ended.EndedAt)

	w, _ = a.do(http.MethodPatch, endPath, t1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(http.MethodGet, "/api/qr-sessions/active", t1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active sessionJSON
	require.NoError(t, json.Unmarshal(env.Data, &active))
	assert.Equal(t, second.Session.ID, active.ID)

	w, env = a.do(http.MethodGet, "/api/qr-sessions/active", t2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No active session", env.Message)
	assert.Equal(t, "null", string(env.Data))

	detail := fmt.Sprintf("/api/qr-sessions/%d", first.Session.ID)
	w, _ = a.do(http.MethodGet, detail, t2, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = a.do(http.MethodGet, detail, hq, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = a.do(http.MethodGet, "/api/qr-sessions/4242", t1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = a.do(http.MethodGet, "/api/qr-sessions/abc", t1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = a.do(http.MethodGet, fmt.Sprintf("/api/qr-sessions?user_id=%d", w1.ID), t2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Sessions   []sessionJSON       `json:"sessions"`
		Pagination repository.PageInfo `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Empty(t, page.Sessions, "workers only see their own sessions")

	w, env = a.do(http.MethodGet, "/api/qr-sessions?status=active&limit=1000", hq, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.Equal(t, 100, page.Pagination.Limit)

	w, _ = a.do(http.MethodGet, "/api/qr-sessions?sort_by=password_hash", hq, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = a.do(http.MethodGet, fmt.Sprintf("/api/qr-sessions/mold/%d", mold.ID), t2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"username":"worker01"`)

	w, _ = a.do(http.MethodGet, "/api/qr-sessions/mold/9999", t1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(http.MethodGet, "/api/qr-sessions/stats", hq, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats repository.ScanStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.TotalScans)

	w, env = a.do(http.MethodGet, "/api/qr-sessions/stats?start_date=2001-01-01&end_date=2001-01-31", hq, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_scans":0,"by_status":[],"gps_stats":[],"top_users":[]}`, string(env.Data))

	w, _ = a.do(http.MethodGet, "/api/qr-sessions/stats?start_date=yesterday", hq, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = a.do(http.MethodPost, "/api/qr-sessions/scan", t2, gin.H{"mold_id": mold.ID, "accuracy": -5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var negative struct {
		GPSValid bool `json:"gps_valid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &negative))
	assert.True(t, negative.GPSValid)
}

func TestInspectionEndpoints(t *testing.T) {
	a := newAPI(t)
	testutil.CreateUser(t, a.db, "worker01", models.RoleWorker)
	testutil.CreateUser(t, a.db, "hq01", models.RoleHQStaff)
	mold := testutil.CreateMold(t, a.db, "M1", nil)

	worker := a.login("worker01")
	hq := a.login("hq01")

	w, _ := a.do(http.MethodPost, "/api/inspections/daily", worker, gin.H{"production_quantity": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := a.do(http.MethodPost, "/api/inspections/daily", worker, gin.H{
		"mold_id":             mold.ID,
		"check_items":         gin.H{"cooling": "ok"},
		"production_quantity": 150,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var check struct {
		ID         uint            `json:"id"`
		Status     string          `json:"status"`
		CheckItems json.RawMessage `json:"check_items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &check))
	assert.Equal(t, "pending", check.Status)
	assert.JSONEq(t, `{"cooling":"ok"}`, string(check.CheckItems))

	w, _ = a.do(http.MethodPost, "/api/inspections/regular", worker, gin.H{"mold_id": mold.ID, "inspection_type": "polishing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodPost, "/api/inspections/regular", worker, gin.H{"mold_id": mold.ID, "inspection_type": "regular", "overall_status": "good"})
	assert.Equal(t, http.StatusCreated, w.Code)

	testutil.CreateUser(t, a.db, "worker02", models.RoleWorker)
	other := a.login("worker02")
	edit := fmt.Sprintf("/api/inspections/daily/%d", check.ID)
	w, env = a.do(http.MethodPut, edit, other, gin.H{"findings": "not mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = a.do(http.MethodPut, edit, worker, gin.H{"findings": "slight flash", "check_items": gin.H{"cooling": "weak"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"findings":"slight flash"`)
	w, _ = a.do(http.MethodPut, edit, worker, gin.H{"overall_status": "broken"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	review := fmt.Sprintf("/api/inspections/daily/%d/review", check.ID)
	w, _ = a.do(http.MethodPatch, review, worker, gin.H{"action": "approve"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = a.do(http.MethodPatch, review, hq, gin.H{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"status":"approved"`)

	w, env = a.do(http.MethodPatch, review, hq, gin.H{"action": "reject"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_REVIEWED", env.Error.Code)

	w, env = a.do(http.MethodGet, "/api/inspections/stats", hq, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats repository.InspectionStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.DailyChecks.Total)
	assert.Equal(t, int64(1), stats.RegularInspections.Total)
}
