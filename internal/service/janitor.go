package service

import (
	"context"
	"log/slog"
	"time"
)

// JanitorTask removes expired records and reports how many it dropped.
type JanitorTask struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// Janitor runs housekeeping tasks on a fixed interval: expired idempotency
// entries, idle lockout records.
type Janitor struct {
	tasks    []JanitorTask
	logger   *slog.Logger
	interval time.Duration
}

func NewJanitor(logger *slog.Logger, interval time.Duration, tasks ...JanitorTask) *Janitor {
	return &Janitor{
		tasks:    tasks,
		logger:   logger,
		interval: interval,
	}
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("janitor started", "interval", j.interval, "tasks", len(j.tasks))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	for _, t := range j.tasks {
		n, err := t.Run(ctx)
		if err != nil {
			j.logger.Error("janitor task failed", "task", t.Name, "error", err)
			continue
		}
		if n > 0 {
			j.logger.Debug("janitor task removed records", "task", t.Name, "removed", n)
		}
	}
}
