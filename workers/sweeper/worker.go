package sweeper

import (
	"sync"
	"time"

	"github.com/xiaoyuanzhu-com/todos/log"
)

var logger = log.GetLogger("Sweeper")

// Store removes sessions past their retention window
type Store interface {
	DeleteExpiredSessions() (int64, error)
}

// Config holds worker configuration
type Config struct {
	// Interval is how often expired sessions are removed
	Interval time.Duration
}

// Worker periodically deletes expired sessions
type Worker struct {
	cfg   Config
	store Store

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a new session sweeper
func NewWorker(cfg Config, store Store) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}

	return &Worker{
		cfg:      cfg,
		store:    store,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop
func (w *Worker) Start() {
	logger.Info().Dur("interval", w.cfg.Interval).Msg("starting session sweeper")

	w.wg.Add(1)
	go w.loop()
}

// Stop signals the loop to exit and waits for it
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
	logger.Info().Msg("session sweeper stopped")
}

func (w *Worker) loop() {
	defer w.wg.Done()

	// Sweep once at startup to clear sessions that expired while we were down
	w.SweepOnce()

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.SweepOnce()
		}
	}
}

// SweepOnce deletes expired sessions and returns how many were removed
func (w *Worker) SweepOnce() int64 {
	deleted, err := w.store.DeleteExpiredSessions()
	if err != nil {
		logger.Error().Err(err).Msg("failed to delete expired sessions")
		return 0
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Msg("expired sessions removed")
	}
	return deleted
}
