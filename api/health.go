package api

import (
	"context"
	"net/http"
	"time"

	"catering/database"
	"catering/logger"
	"catering/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthStats row counts reported by the health check
type HealthStats struct {
	TotalTags       int64 `json:"totalTags"`
	TotalMenus      int64 `json:"totalMenus"`
	TotalCategories int64 `json:"totalCategories"`
	TotalMenuItems  int64 `json:"totalMenuItems"`
}

// HealthStatus health check payload
type HealthStatus struct {
	Status    string            `json:"status"`
	Database  string            `json:"database"`
	Timestamp time.Time         `json:"timestamp"`
	Stats     HealthStats       `json:"stats"`
	Endpoints map[string]string `json:"endpoints"`
}

var apiEndpoints = map[string]string{
	"menus":      "/api/menus",
	"categories": "/api/categories",
	"menuItems":  "/api/menu-items",
	"tags":       "/api/tags",
}

// Health checks database connectivity and reports row counts
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} Response{data=HealthStatus}
// @Failure 500 {object} ErrorResponse
// @Router /api/health [get]
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := database.Ping(ctx); err != nil {
		logger.L().Error("health check failed", zap.Error(err))
		Error(c, http.StatusInternalServerError, "Health check failed: "+SafeErrorMessage(err, "database unreachable"))
		return
	}

	var stats HealthStats
	db := database.DB.WithContext(ctx)
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Tag{}, &stats.TotalTags},
		{&models.Menu{}, &stats.TotalMenus},
		{&models.Category{}, &stats.TotalCategories},
		{&models.MenuItem{}, &stats.TotalMenuItems},
	}
	for _, cnt := range counts {
		if err := db.Model(cnt.model).Count(cnt.dest).Error; err != nil {
			logger.L().Error("health check failed", zap.Error(err))
			Error(c, http.StatusInternalServerError, "Health check failed: "+SafeErrorMessage(err, "query failed"))
			return
		}
	}

	Success(c, HealthStatus{
		Status:    "ok",
		Database:  "connected",
		Timestamp: time.Now().UTC(),
		Stats:     stats,
		Endpoints: apiEndpoints,
	})
}
