package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"telemetry-service/internal/classifier"
	"telemetry-service/internal/db"
	"telemetry-service/internal/ingest"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

// CommandPublisher forwards a fault-injection command to a device's cmd
// topic.
type CommandPublisher func(deviceID string, cmd models.Command) error

type Handler struct {
	db         *db.DB
	logger     *logging.Logger
	svc        *ingest.Service
	thresholds classifier.Thresholds
	publishCmd CommandPublisher
	upgrader   websocket.Upgrader
}

func NewHandler(database *db.DB, logger *logging.Logger, svc *ingest.Service, thresholds classifier.Thresholds, publishCmd CommandPublisher) *Handler {
	return &Handler{
		db:         database,
		logger:     logger,
		svc:        svc,
		thresholds: thresholds,
		publishCmd: publishCmd,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ListDevices(c *gin.Context) {
	devices, err := h.db.ListDevices(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to list devices: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list devices"})
		return
	}
	c.JSON(http.StatusOK, devices)
}

func (h *Handler) GetAnomalies(c *gin.Context) {
	deviceID := c.Query("device_id")
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	anomalies, total, err := h.db.GetAnomalies(c.Request.Context(), deviceID, limit, offset)
	if err != nil {
		h.logger.Errorf("Failed to get anomalies: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get anomalies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "items": anomalies})
}

func (h *Handler) GetReadings(c *gin.Context) {
	deviceID := c.Param("device_id")
	limit := intQuery(c, "limit", 20)

	readings, err := h.db.GetLatestReadings(c.Request.Context(), deviceID, limit)
	if err != nil {
		h.logger.Errorf("Failed to get readings for %s: %v", deviceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get readings"})
		return
	}
	c.JSON(http.StatusOK, readings)
}

func (h *Handler) GetThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"vib_rms_g_high":   h.thresholds.VibRMSHigh,
		"health_score_low": h.thresholds.HealthScoreLow,
		"temp_c_low":       h.thresholds.TempCLow,
		"temp_c_high":      h.thresholds.TempCHigh,
		"current_a_low":    h.thresholds.CurrentALow,
		"current_a_high":   h.thresholds.CurrentAHigh,
		"sound_db_high":    h.thresholds.SoundDBHigh,
		"rms_amp_high":     h.thresholds.RMSAmpHigh,
	})
}

// SendCommand republishes a fault-injection command onto the device's cmd
// topic.
func (h *Handler) SendCommand(c *gin.Context) {
	deviceID := c.Param("device_id")

	var cmd models.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Errorf("Invalid command body for %s: %v", deviceID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if h.publishCmd == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Command channel not configured"})
		return
	}
	if err := h.publishCmd(deviceID, cmd); err != nil {
		h.logger.Errorf("Failed to publish command for %s: %v", deviceID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to publish command"})
		return
	}

	h.logger.Infof("Published command for %s: %+v", deviceID, cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// LiveFeed upgrades the request and streams classified readings until the
// client disconnects.
func (h *Handler) LiveFeed(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	ws := h.svc.WebSockets()
	ws.AddConnection(conn)
	defer ws.RemoveConnection(conn)

	// Reads are discarded; the loop exists to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v >= 0 {
		return v
	}
	return def
}
