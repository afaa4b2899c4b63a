package indexer

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler fires a job on a fixed interval. A run that is still in
// progress when the next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
}

func NewScheduler(interval time.Duration, job func(), logger *zap.Logger) (*Scheduler, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("poll interval must be at least 1s, got %s", interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger: logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc("@every "+interval.String(), job); err != nil {
		return nil, fmt.Errorf("schedule job: %w", err)
	}
	return &Scheduler{cron: c, interval: interval}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents further runs and waits for the current one to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
