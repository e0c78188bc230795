package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/service"
)

const sweepTimeout = 30 * time.Second

// SLAWorker runs the periodic breach sweep on a cron schedule.
type SLAWorker struct {
	sla      *service.SLAService
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewSLAWorker constructs the worker. The schedule uses cron syntax,
// "@every 1m" by default.
func NewSLAWorker(sla *service.SLAService, schedule string, logger *zap.Logger) *SLAWorker {
	return &SLAWorker{
		sla:      sla,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules the sweep and launches the cron runner.
func (w *SLAWorker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.runSweep); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("sla sweep scheduled", zap.String("schedule", w.schedule))
	return nil
}

// Stop halts the runner and waits for an in-flight sweep to finish.
func (w *SLAWorker) Stop() {
	<-w.cron.Stop().Done()
}

func (w *SLAWorker) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	breached, err := w.sla.Sweep(ctx)
	if err != nil {
		w.logger.Error("sla sweep failed", zap.Error(err))
		return
	}
	if breached > 0 {
		w.logger.Info("sla sweep latched breaches", zap.Int("count", breached))
	}
}
