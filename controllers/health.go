package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/errs"
)

// Health reports whether the database answers a ping.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		sendResponse(c, code, "Service is "+status, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
		})
	}
}

// NoRoute answers unknown paths with the standard error envelope.
func NoRoute(c *gin.Context) {
	c.Error(errs.NotFound("NOT_FOUND", "Route "+c.Request.Method+" "+c.Request.URL.Path+" not found"))
}
