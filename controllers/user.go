package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/models"
)

type UserController struct {
	db *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		db: db,
	}
}

type LoginSessionResponse struct {
	ID             uint      `json:"id"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	CurrentSession bool      `json:"current_session"`
}

// GetLoginSessions lists the caller's unexpired, unrevoked logins.
func (uc *UserController) GetLoginSessions(c *gin.Context) {
	userID := principal(c).ID
	currentTokenID := c.GetString(ctxTokenID)

	var sessions []models.UserSession
	if err := uc.db.WithContext(c.Request.Context()).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, time.Now()).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		c.Error(pkgerrors.Wrap(err, "list login sessions"))
		return
	}

	sessionResponses := make([]LoginSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		sessionResponses = append(sessionResponses, LoginSessionResponse{
			ID:             session.ID,
			IPAddress:      session.IPAddress,
			UserAgent:      session.UserAgent,
			Location:       session.Location,
			CreatedAt:      session.CreatedAt,
			ExpiresAt:      session.ExpiresAt,
			CurrentSession: session.TokenID == currentTokenID,
		})
	}

	sendResponse(c, http.StatusOK, "Active logins retrieved successfully", gin.H{
		"sessions":            sessionResponses,
		"total_active_logins": len(sessionResponses),
	})
}
