package main

import (
	"sync"
	"time"

	"github.com/amstokely/nfsim/internal/nfcore"
	"github.com/prometheus/client_golang/prometheus"
)

// Server holds the single running simulation a nfsim-server process
// hosts, guarded by a mutex since HTTP handlers and the notification
// worker pool both reach into it concurrently.
type Server struct {
	mu  sync.RWMutex
	sys *nfcore.System

	notifierMgr  *nfcore.NotificationManager
	metrics      *nfcore.Metrics
	registry     *prometheus.Registry
	wallClockCap time.Duration

	logger *Logger
}

// NewServer creates an empty Server with no model loaded yet.
func NewServer(logger *Logger, workerCount int, wallClockCap time.Duration) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		notifierMgr:  nfcore.NewNotificationManager(workerCount),
		metrics:      nfcore.NewMetrics(registry),
		registry:     registry,
		wallClockCap: wallClockCap,
		logger:       logger,
	}
}

// loadModel replaces the currently running system with one built from
// cfg, discarding any prior simulation state.
func (s *Server) loadModel(cfg *nfcore.ModelConfig) error {
	sys, err := nfcore.BuildModelFromConfigWithTimeout(cfg, s.logger, s.wallClockCap)
	if err != nil {
		return err
	}
	if err := sys.PrepareForSimulation(); err != nil {
		return err
	}
	sys.Notifier = s.notifierMgr
	sys.Metrics = s.metrics
	s.metrics.Observe(sys)

	s.mu.Lock()
	s.sys = sys
	s.mu.Unlock()
	return nil
}

// currentSystem returns the active system, or nil if none is loaded yet.
func (s *Server) currentSystem() *nfcore.System {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sys
}
