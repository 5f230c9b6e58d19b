package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/health [get]
func (c *HealthController) Check(ctx *gin.Context) {
	status := "ok"
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": status})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": status})
}
