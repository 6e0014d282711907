package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/infra"
	"github.com/likbrus/likbrus.github.io/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health godoc
// @Summary  Health check
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Failure  503 {object} map[string]interface{}
// @Router   /health [get]
func Health(db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if mailer != nil {
			smtp := "disabled"
			if mailer.Enabled() {
				smtp = mailer.BreakerState().String()
			}
			body["smtp"] = smtp
		}
		if n, err := worker.DLQLength(ctx, rdb, worker.QueueEmail); err == nil {
			body["dlq_email"] = n
		}
		c.JSON(status, body)
	}
}
