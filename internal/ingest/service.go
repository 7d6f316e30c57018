package ingest

import (
	"context"
	"encoding/json"
	"sync"

	"telemetry-service/internal/classifier"
	"telemetry-service/internal/db"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
	"telemetry-service/internal/providers"
)

// Config tunes the classification worker pool.
type Config struct {
	QueueSize  int
	MaxWorkers int
	Telegram   providers.TelegramConfig
}

// Service consumes Readings, classifies them and fans the results out:
// anomalies are persisted (and optionally alerted), device snapshots are
// refreshed, and every classified reading is broadcast to WebSocket
// subscribers.
type Service struct {
	db         *db.DB
	logger     *logging.Logger
	config     Config
	thresholds classifier.Thresholds
	readings   chan models.Reading
	ctx        context.Context
	cancel     context.CancelFunc
	wg         *sync.WaitGroup
	wsManager  *WebSocketManager
}

// New constructs an ingest Service.
func New(database *db.DB, logger *logging.Logger, cfg Config, thresholds classifier.Thresholds) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		db:         database,
		logger:     logger,
		config:     cfg,
		thresholds: thresholds,
		readings:   make(chan models.Reading, cfg.QueueSize),
		ctx:        ctx,
		cancel:     cancel,
		wsManager:  NewWebSocketManager(logger),
	}
}

// Logger exposes the Service's logger.
func (s *Service) Logger() *logging.Logger {
	return s.logger
}

// WebSockets exposes the live-feed connection manager for the API layer.
func (s *Service) WebSockets() *WebSocketManager {
	return s.wsManager
}

// Start launches the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.config.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop cancels the workers; pending queue entries are dropped.
func (s *Service) Stop() {
	s.cancel()
}

// QueueReading enqueues a Reading for classification.
func (s *Service) QueueReading(r models.Reading) {
	select {
	case s.readings <- r:
	default:
		s.logger.Errorf("Queue full, dropping reading: device=%s sensor=%s", r.DeviceID, r.SensorType)
	}
}

// worker processes Readings until context is cancelled.
func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Worker %d stopped", id)
			return
		case r := <-s.readings:
			s.handleReading(r)
		}
	}
}

// handleReading classifies one reading and dispatches the verdict.
func (s *Service) handleReading(r models.Reading) {
	verdict := classifier.Classify(r, s.thresholds)

	if err := s.db.UpsertDeviceReading(s.ctx, r, verdict.Metrics); err != nil {
		s.logger.Errorf("Device snapshot update failed for %s: %v", r.DeviceID, err)
	}

	if verdict.IsAnomaly {
		s.logger.Warnf("Anomaly: device=%s category=%s reason=%q", r.DeviceID, verdict.Category, verdict.Reason)
		if err := s.db.InsertAnomaly(s.ctx, r, verdict); err != nil {
			s.logger.Errorf("InsertAnomaly failed: %v", err)
		}
		if s.config.Telegram.BotToken != "" {
			if err := providers.SendTelegramAlert(s.ctx, r, verdict, s.config.Telegram, s.logger); err != nil {
				s.logger.Errorf("Telegram alert failed: %v", err)
			}
		}
	} else {
		s.logger.Debugf("Classified device=%s sensor=%s category=%s", r.DeviceID, r.SensorType, verdict.Category)
	}

	event := Event{Reading: r, Verdict: verdict}
	if payload, err := json.Marshal(event); err == nil {
		s.wsManager.Broadcast(payload)
	}
}

// Event is one classified reading as delivered on the live feed.
type Event struct {
	Reading models.Reading     `json:"reading"`
	Verdict classifier.Verdict `json:"verdict"`
}
