package api

import (
	"context"
	"net/http"
	"time"

	"ecocoach/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewHealthRoutes(handler *gin.RouterGroup, p Pinger) {
	handler.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			logger.Logger().Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
