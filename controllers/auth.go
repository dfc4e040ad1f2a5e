package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/errs"
	"github.com/Krish-Depani/mold-tracker/models"
	"github.com/Krish-Depani/mold-tracker/policy"
	"github.com/Krish-Depani/mold-tracker/validators"
)

var (
	errInvalidCredentials = errs.Unauthorized("INVALID_CREDENTIALS", "Invalid username or password")
	errAuthRequired       = errs.Unauthorized("AUTH_REQUIRED", "Authentication required")
	errInvalidToken       = errs.Unauthorized("INVALID_TOKEN", "Invalid or expired token")
	errInvalidRefresh     = errs.Unauthorized("INVALID_TOKEN", "Invalid or expired refresh token")
	errInvalidPassword    = errs.Unauthorized("INVALID_PASSWORD", "Current password is incorrect")
	errAccountDisabled    = errs.Forbidden("ACCOUNT_DISABLED", "Account is disabled")
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// TokenStore registers issued token ids so they can be revoked before expiry.
type TokenStore interface {
	SetSession(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error
	GetSession(ctx context.Context, tokenID string) (uint, error)
	DeleteSession(ctx context.Context, tokenID string) error
}

type Locator interface {
	Locate(ip string) string
}

type Claims struct {
	Type     string      `json:"typ"`
	Role     models.Role `json:"role"`
	Username string      `json:"username"`
	jwt.RegisteredClaims
}

type AuthController struct {
	db         *gorm.DB
	tokens     TokenStore
	locator    Locator
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthController(db *gorm.DB, tokens TokenStore, locator Locator, secret string, ttl, refreshTTL time.Duration) *AuthController {
	return &AuthController{
		db:         db,
		tokens:     tokens,
		locator:    locator,
		secret:     []byte(secret),
		ttl:        ttl,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// tokenPair is an access token and the refresh token that can replace it.
type tokenPair struct {
	accessID         string
	refreshID        string
	access           string
	refresh          string
	expiresAt        time.Time
	refreshExpiresAt time.Time
}

func (ac *AuthController) issue(user *models.User, now time.Time) (*tokenPair, error) {
	pair := &tokenPair{
		accessID:         uuid.NewString(),
		refreshID:        uuid.NewString(),
		expiresAt:        now.Add(ac.ttl),
		refreshExpiresAt: now.Add(ac.refreshTTL),
	}
	var err error
	if pair.access, err = ac.sign(user, tokenAccess, pair.accessID, now, pair.expiresAt); err != nil {
		return nil, pkgerrors.Wrap(err, "sign access token")
	}
	if pair.refresh, err = ac.sign(user, tokenRefresh, pair.refreshID, now, pair.refreshExpiresAt); err != nil {
		return nil, pkgerrors.Wrap(err, "sign refresh token")
	}
	return pair, nil
}

func (ac *AuthController) register(ctx context.Context, pair *tokenPair, userID uint) error {
	if err := ac.tokens.SetSession(ctx, pair.accessID, userID, ac.ttl); err != nil {
		return pkgerrors.Wrap(err, "register access token")
	}
	return pkgerrors.Wrap(ac.tokens.SetSession(ctx, pair.refreshID, userID, ac.refreshTTL), "register refresh token")
}

func (pair *tokenPair) body() gin.H {
	return gin.H{
		"token":              pair.access,
		"expires_at":         pair.expiresAt,
		"refresh_token":      pair.refresh,
		"refresh_expires_at": pair.refreshExpiresAt,
	}
}

// Login verifies credentials and issues a bearer token.
func (ac *AuthController) Login(c *gin.Context) {
	req, err := validators.ValidateLoginRequest(c)
	if err != nil {
		c.Error(err)
		return
	}

	var user models.User
	err = ac.db.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.Error(errInvalidCredentials)
		return
	}
	if err != nil {
		c.Error(pkgerrors.Wrap(err, "find user"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.Error(errInvalidCredentials)
		return
	}
	if !user.IsActive {
		c.Error(errAccountDisabled)
		return
	}

	now := ac.now()
	pair, err := ac.issue(&user, now)
	if err != nil {
		c.Error(err)
		return
	}

	location := "Unknown"
	if ac.locator != nil {
		location = ac.locator.Locate(c.ClientIP())
	}

	err = ac.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		session := models.UserSession{
			UserID:         user.ID,
			TokenID:        pair.accessID,
			RefreshTokenID: pair.refreshID,
			IPAddress:      c.ClientIP(),
			UserAgent:      c.GetHeader("User-Agent"),
			Location:       location,
			CreatedAt:      now,
			ExpiresAt:      pair.expiresAt,
			IsActive:       true,
		}
		if err := tx.Create(&session).Error; err != nil {
			return pkgerrors.Wrap(err, "create login session")
		}
		if err := tx.Model(&user).Update("last_login", now).Error; err != nil {
			return pkgerrors.Wrap(err, "update last login")
		}
		// Registering last means a Redis failure rolls back the row.
		return ac.register(c.Request.Context(), pair, user.ID)
	})
	if err != nil {
		c.Error(err)
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "ip": c.ClientIP()}).Info("user logged in")
	user.LastLogin = &now
	body := pair.body()
	body["user"] = user
	sendResponse(c, http.StatusOK, "Login successful", body)
}

// Refresh exchanges a refresh token for a new token pair. The old pair is
// revoked so each refresh token can be used once.
func (ac *AuthController) Refresh(c *gin.Context) {
	req, err := validators.ValidateRefreshRequest(c)
	if err != nil {
		c.Error(err)
		return
	}
	ctx := c.Request.Context()

	claims, err := ac.parse(req.RefreshToken, tokenRefresh)
	if err != nil {
		c.Error(errInvalidRefresh)
		return
	}
	userID, err := ac.tokens.GetSession(ctx, claims.ID)
	if err != nil || strconv.FormatUint(uint64(userID), 10) != claims.Subject {
		c.Error(errInvalidRefresh)
		return
	}

	var session models.UserSession
	err = ac.db.WithContext(ctx).Preload("User").
		Where("refresh_token_id = ? AND is_active = ?", claims.ID, true).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.Error(errInvalidRefresh)
		return
	}
	if err != nil {
		c.Error(pkgerrors.Wrap(err, "find login session"))
		return
	}
	if !session.User.IsActive {
		c.Error(errInvalidRefresh)
		return
	}

	pair, err := ac.issue(&session.User, ac.now())
	if err != nil {
		c.Error(err)
		return
	}
	oldAccessID := session.TokenID
	err = ac.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.UserSession{}).Where("id = ?", session.ID).Updates(map[string]interface{}{
			"token_id":         pair.accessID,
			"refresh_token_id": pair.refreshID,
			"expires_at":       pair.expiresAt,
		}).Error
		if err != nil {
			return pkgerrors.Wrap(err, "rotate login session")
		}
		return ac.register(ctx, pair, session.UserID)
	})
	if err != nil {
		c.Error(err)
		return
	}

	for _, id := range []string{oldAccessID, claims.ID} {
		if err := ac.tokens.DeleteSession(ctx, id); err != nil {
			logrus.WithError(err).WithField("token_id", id).Warn("failed to unregister rotated token")
		}
	}

	logrus.WithField("user_id", session.UserID).Info("token refreshed")
	sendResponse(c, http.StatusOK, "Token refreshed successfully", pair.body())
}

func (ac *AuthController) sign(user *models.User, tokenType, tokenID string, now, expiresAt time.Time) (string, error) {
	claims := Claims{
		Type:     tokenType,
		Role:     user.Role,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ac.secret)
}

// parse verifies raw and requires it to be of the given token type.
func (ac *AuthController) parse(raw, tokenType string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return ac.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(ac.now))
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenType {
		return nil, pkgerrors.Errorf("expected %s token, got %q", tokenType, claims.Type)
	}
	return &claims, nil
}

// Logout revokes the caller's token and the refresh token paired with it.
func (ac *AuthController) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	tokenID := c.GetString(ctxTokenID)
	now := ac.now()

	var session models.UserSession
	err := ac.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&session).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.Error(pkgerrors.Wrap(err, "find login session"))
		return
	}

	err = ac.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("token_id = ? AND is_active = ?", tokenID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"revoked_at": now,
		}).Error
	if err != nil {
		c.Error(pkgerrors.Wrap(err, "revoke login session"))
		return
	}
	if err := ac.tokens.DeleteSession(ctx, tokenID); err != nil {
		c.Error(pkgerrors.Wrap(err, "unregister token"))
		return
	}
	if session.RefreshTokenID != "" {
		if err := ac.tokens.DeleteSession(ctx, session.RefreshTokenID); err != nil {
			c.Error(pkgerrors.Wrap(err, "unregister refresh token"))
			return
		}
	}

	sendResponse(c, http.StatusOK, "Logged out successfully", nil)
}

// ChangePassword replaces the caller's password after checking the current one.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	req, err := validators.ValidateChangePasswordRequest(c)
	if err != nil {
		c.Error(err)
		return
	}

	var user models.User
	if err := ac.db.WithContext(c.Request.Context()).First(&user, principal(c).ID).Error; err != nil {
		c.Error(pkgerrors.Wrap(err, "find current user"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		c.Error(errInvalidPassword)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.Error(pkgerrors.Wrap(err, "hash password"))
		return
	}
	if err := ac.db.WithContext(c.Request.Context()).Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		c.Error(pkgerrors.Wrap(err, "update password"))
		return
	}

	logrus.WithField("user_id", user.ID).Info("password changed")
	sendResponse(c, http.StatusOK, "Password changed successfully", nil)
}

// AuthMiddleware accepts a bearer token that is correctly signed, unexpired,
// still registered in the token store and owned by an active user.
func (ac *AuthController) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			c.Error(errAuthRequired)
			c.Abort()
			return
		}

		claims, err := ac.parse(raw, tokenAccess)
		if err != nil {
			c.Error(errInvalidToken)
			c.Abort()
			return
		}

		userID, err := ac.tokens.GetSession(c.Request.Context(), claims.ID)
		if err != nil || strconv.FormatUint(uint64(userID), 10) != claims.Subject {
			c.Error(errInvalidToken)
			c.Abort()
			return
		}

		var user models.User
		err = ac.db.WithContext(c.Request.Context()).Where("id = ? AND is_active = ?", userID, true).First(&user).Error
		if err != nil {
			c.Error(errInvalidToken)
			c.Abort()
			return
		}

		c.Set(ctxPrincipal, policy.Principal{ID: user.ID, Role: user.Role})
		c.Set(ctxTokenID, claims.ID)
		c.Next()
	}
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *gin.Context) {
	var user models.User
	err := ac.db.WithContext(c.Request.Context()).First(&user, principal(c).ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.Error(errs.NotFound("USER_NOT_FOUND", "User not found"))
		return
	}
	if err != nil {
		c.Error(pkgerrors.Wrap(err, "find current user"))
		return
	}
	sendResponse(c, http.StatusOK, "User retrieved successfully", user)
}
