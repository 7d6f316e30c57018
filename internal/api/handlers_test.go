package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-service/internal/classifier"
	"telemetry-service/internal/ingest"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

func newTestRouter(t *testing.T, publishCmd CommandPublisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.New(t.TempDir(), "error")
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	svc := ingest.New(nil, logger, ingest.Config{QueueSize: 1, MaxWorkers: 1}, classifier.DefaultThresholds())
	return NewRouter(nil, logger, svc, classifier.DefaultThresholds(), "/api/v0", publishCmd)
}

func TestGetThresholds(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v0/thresholds", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0.055, body["vib_rms_g_high"])
	assert.Equal(t, 70.0, body["health_score_low"])
	assert.Equal(t, 80.0, body["temp_c_high"])
	assert.Equal(t, 0.8, body["rms_amp_high"])
	assert.Len(t, body, 8)
}

func TestSendCommand(t *testing.T) {
	t.Run("queues valid command", func(t *testing.T) {
		var gotDevice string
		var gotCmd models.Command
		router := newTestRouter(t, func(deviceID string, cmd models.Command) error {
			gotDevice = deviceID
			gotCmd = cmd
			return nil
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v0/devices/EDGE_D001/command",
			strings.NewReader(`{"mode": "bearing_wear", "rpm": 1200}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "EDGE_D001", gotDevice)
		assert.Equal(t, "bearing_wear", gotCmd.Mode)
		require.NotNil(t, gotCmd.RPM)
		assert.Equal(t, 1200.0, *gotCmd.RPM)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		router := newTestRouter(t, func(string, models.Command) error { return nil })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v0/devices/EDGE_D001/command",
			strings.NewReader(`{"mode": 12`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unavailable without a publisher", func(t *testing.T) {
		router := newTestRouter(t, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v0/devices/EDGE_D001/command",
			strings.NewReader(`{"mode": "normal"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("bad gateway on publish failure", func(t *testing.T) {
		router := newTestRouter(t, func(string, models.Command) error {
			return errors.New("broker unreachable")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v0/devices/EDGE_D001/command",
			strings.NewReader(`{"mode": "normal"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
