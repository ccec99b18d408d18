package scheduler

import (
	"context"
	"time"

	"installment_job/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// runTimeout bounds one scheduled invocation, covering the sweep, its retry
// backoff delays and the downstream notification stages.
const runTimeout = 10 * time.Minute

// TransitionRunner is the job entry point shared with the HTTP trigger.
type TransitionRunner interface {
	Run(ctx context.Context) (*app.RunResult, error)
}

// OverdueScheduler fires the overdue-check job on a cron spec. One invocation
// per tick; the job's own idempotence guard makes accidental overlap harmless.
type OverdueScheduler struct {
	cronEngine *cron.Cron
	svc        TransitionRunner
	logger     *logrus.Logger
	cronSpec   string
}

func NewOverdueScheduler(svc TransitionRunner, logger *logrus.Logger, cronSpec string) *OverdueScheduler {
	return &OverdueScheduler{
		cronEngine: cron.New(cron.WithLocation(time.UTC)), // tenant-local time is resolved per agency, not here
		svc:        svc,
		logger:     logger,
		cronSpec:   cronSpec,
	}
}

func (s *OverdueScheduler) Start() {
	s.logger.Info("Starting overdue-check scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron tick: running overdue check.")
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := s.svc.Run(ctx); err != nil {
			s.logger.Errorf("Scheduled overdue check failed: %v", err)
		}
	})
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add overdue-check cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Infof("Overdue-check scheduler started with spec %q.", s.cronSpec)
}

func (s *OverdueScheduler) Stop() {
	s.logger.Info("Stopping overdue-check scheduler...")
	ctx := s.cronEngine.Stop() // waits for a running job to finish
	<-ctx.Done()
	s.logger.Info("Overdue-check scheduler gracefully stopped.")
}
