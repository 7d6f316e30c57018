package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telemetry-service/internal/classifier"
	"telemetry-service/internal/db"
	"telemetry-service/internal/ingest"
	"telemetry-service/internal/logging"
)

func NewRouter(database *db.DB, logger *logging.Logger, svc *ingest.Service, thresholds classifier.Thresholds, basePath string, publishCmd CommandPublisher) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	h := NewHandler(database, logger, svc, thresholds, publishCmd)
	api := r.Group(basePath)
	{
		api.GET("/devices", h.ListDevices)
		api.GET("/anomalies", h.GetAnomalies)
		api.GET("/readings/:device_id", h.GetReadings)
		api.GET("/thresholds", h.GetThresholds)
		api.POST("/devices/:device_id/command", h.SendCommand)
		api.GET("/ws", h.LiveFeed)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
