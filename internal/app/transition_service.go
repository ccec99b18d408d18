package app

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"installment_job/internal/domain/agency"
	"installment_job/internal/domain/alert"
	"installment_job/internal/domain/installment"
	"installment_job/internal/domain/jobrun"
	"installment_job/internal/infra/emailer"
	"installment_job/internal/metrics"
	"installment_job/internal/retry"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// JobName identifies the overdue-check job in the run ledger.
const JobName = "installment-overdue-check"

// finishTimeout bounds the terminal ledger update in the failure path, which
// must land even when the job's own context is already cancelled.
const finishTimeout = 10 * time.Second

// TransitionCounts breaks the per-agency update count down by transition.
type TransitionCounts struct {
	PendingToOverdue int `json:"pending_to_overdue"`
}

// AgencyResult is the per-tenant outcome of one overdue sweep.
type AgencyResult struct {
	AgencyID        uuid.UUID        `json:"agency_id"`
	UpdatedCount    int              `json:"updated_count"`
	Transitions     TransitionCounts `json:"transitions"`
	NewlyOverdueIDs []uuid.UUID      `json:"newly_overdue_ids"`
}

// RunResult is the overall outcome of one job invocation.
type RunResult struct {
	RecordsUpdated       int
	NotificationsCreated int
	EmailsSent           int
	Agencies             []AgencyResult
	NotificationErrors   []string
	EmailErrors          []string
}

// runMetadata is what the run ledger stores alongside the terminal status.
type runMetadata struct {
	Agencies             []AgencyResult   `json:"agencies"`
	NotificationsCreated int              `json:"notifications_created"`
	RemindersCreated     int              `json:"reminders_created"`
	EmailSummary         *emailer.Summary `json:"email_summary,omitempty"`
	NotificationErrors   []string         `json:"notification_errors,omitempty"`
	EmailErrors          []string         `json:"email_errors,omitempty"`
	Error                string           `json:"error,omitempty"`
	Stack                string           `json:"stack,omitempty"`
}

// TransitionService orchestrates one run of the overdue-check job: ledger
// start, retry-wrapped per-agency sweep, best-effort notifier dispatch,
// terminal ledger update.
type TransitionService struct {
	agencyRepo agency.Repository
	instRepo   installment.Repository
	runRepo    jobrun.Repository
	notifier   *NotifierService
	alerter    alert.Client // optional
	logger     *logrus.Logger
	retryOpts  retry.Options
	now        func() time.Time
}

func NewTransitionService(
	ar agency.Repository,
	ir installment.Repository,
	rr jobrun.Repository,
	notifier *NotifierService,
	logger *logrus.Logger,
) *TransitionService {
	return &TransitionService{
		agencyRepo: ar,
		instRepo:   ir,
		runRepo:    rr,
		notifier:   notifier,
		logger:     logger,
		retryOpts:  retry.Options{Logger: logger},
		now:        time.Now,
	}
}

// WithAlerter attaches an optional failure alert channel.
func (s *TransitionService) WithAlerter(a alert.Client) *TransitionService {
	s.alerter = a
	return s
}

// WithRetryOptions overrides the retry policy for the sweep call.
func (s *TransitionService) WithRetryOptions(opts retry.Options) *TransitionService {
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	s.retryOpts = opts
	return s
}

// WithClock overrides the time source.
func (s *TransitionService) WithClock(now func() time.Time) *TransitionService {
	s.now = now
	return s
}

// sweepOutcome carries the per-agency results plus the resolved local clocks
// the due-soon stage reuses.
type sweepOutcome struct {
	results  []AgencyResult
	agencies []*agency.Agency
	clocks   []agency.LocalClock
}

// Run executes one job invocation. The run ledger gets exactly one running
// record and one terminal update; if the sweep fails (including exhausted
// retries or a panic) the failed update still lands via the deferred path.
func (s *TransitionService) Run(ctx context.Context) (res *RunResult, err error) {
	run, startErr := s.runRepo.Start(ctx, JobName)
	if startErr != nil {
		// No audit trail means no processing at all.
		return nil, fmt.Errorf("failed to start job run: %w", startErr)
	}
	s.logger.Infof("Job run %d (%s) started.", run.ID, JobName)

	finished := false
	defer func() {
		if finished {
			return
		}
		meta := runMetadata{Agencies: []AgencyResult{}}
		if rec := recover(); rec != nil {
			meta.Stack = string(debug.Stack())
			err = fmt.Errorf("job panicked: %v", rec)
		}
		if err == nil {
			err = fmt.Errorf("job aborted before completion")
		}
		meta.Error = err.Error()
		s.finishRun(run.ID, jobrun.StatusFailed, 0, meta, err.Error())
		metrics.JobRunsTotal.WithLabelValues(string(jobrun.StatusFailed)).Inc()
		s.alertFailure(run.ID, err)
	}()

	outcome, err := retry.Do(ctx, s.sweepAgencies, s.retryOpts)
	if err != nil {
		s.logger.Errorf("Job run %d: overdue sweep failed: %v", run.ID, err)
		return nil, fmt.Errorf("overdue sweep failed: %w", err)
	}

	res = &RunResult{Agencies: outcome.results}
	newlyOverdue := make([]uuid.UUID, 0)
	for _, r := range outcome.results {
		res.RecordsUpdated += r.UpdatedCount
		newlyOverdue = append(newlyOverdue, r.NewlyOverdueIDs...)
	}
	s.logger.Infof("Job run %d: %d installments transitioned across %d agencies.",
		run.ID, res.RecordsUpdated, len(outcome.results))

	// Downstream stages are best-effort: their errors go into the ledger
	// metadata but never change the run's terminal status.
	created, notifErrs := s.notifier.GenerateOverdueNotifications(ctx, outcome.results)
	res.NotificationsCreated = created
	res.NotificationErrors = notifErrs

	remindersCreated := 0
	for i, ag := range outcome.agencies {
		n, errs := s.notifier.GenerateDueSoonReminders(ctx, ag, outcome.clocks[i].Date)
		remindersCreated += n
		res.NotificationErrors = append(res.NotificationErrors, errs...)
	}

	var emailSummary *emailer.Summary
	if len(newlyOverdue) > 0 {
		summary, emailErrs := s.notifier.TriggerOverdueEmails(ctx, newlyOverdue)
		res.EmailsSent = summary.Sent
		res.EmailErrors = emailErrs
		emailSummary = &summary
	}

	meta := runMetadata{
		Agencies:             outcome.results,
		NotificationsCreated: created,
		RemindersCreated:     remindersCreated,
		EmailSummary:         emailSummary,
		NotificationErrors:   res.NotificationErrors,
		EmailErrors:          res.EmailErrors,
	}
	s.finishRun(run.ID, jobrun.StatusSuccess, res.RecordsUpdated, meta, "")
	finished = true

	metrics.JobRunsTotal.WithLabelValues(string(jobrun.StatusSuccess)).Inc()
	metrics.InstallmentsTransitionedTotal.Add(float64(res.RecordsUpdated))
	metrics.NotificationsCreatedTotal.Add(float64(created + remindersCreated))
	metrics.EmailsSentTotal.Add(float64(res.EmailsSent))

	s.logger.Infof("Job run %d completed: %d updated, %d notifications, %d reminders, %d emails.",
		run.ID, res.RecordsUpdated, created, remindersCreated, res.EmailsSent)
	return res, nil
}

// sweepAgencies performs the idempotent batch update for every active
// agency, each in its own local business time. Re-invocation within the same
// agency-local day updates zero additional rows, which is what makes the
// retry wrapper safe.
func (s *TransitionService) sweepAgencies(ctx context.Context) (*sweepOutcome, error) {
	agencies, err := s.agencyRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active agencies: %w", err)
	}

	nowUTC := s.now().UTC()
	out := &sweepOutcome{results: make([]AgencyResult, 0, len(agencies))}
	for _, ag := range agencies {
		clock, ok := ag.ClockAt(nowUTC)
		if !ok {
			s.logger.Warnf("Agency %s has invalid timezone %q. Falling back to UTC.", ag.ID, ag.Timezone)
		}

		// For installments due before the local date the evaluator is
		// unconditionally true; the same-day clause reduces to whether the
		// local clock is past the agency's cutoff.
		cutoffPassed := installment.ShouldTransition(clock.Date, clock.Date, clock.MinuteOfDay, ag.CutoffMinute())

		ids, err := s.instRepo.MarkOverdue(ctx, ag.ID, clock.Date, cutoffPassed)
		if err != nil {
			return nil, fmt.Errorf("overdue update failed for agency %s: %w", ag.ID, err)
		}
		if len(ids) > 0 {
			s.logger.Infof("Agency %s: %d installments transitioned to overdue.", ag.ID, len(ids))
		}

		out.results = append(out.results, AgencyResult{
			AgencyID:        ag.ID,
			UpdatedCount:    len(ids),
			Transitions:     TransitionCounts{PendingToOverdue: len(ids)},
			NewlyOverdueIDs: ids,
		})
		out.agencies = append(out.agencies, ag)
		out.clocks = append(out.clocks, clock)
	}
	return out, nil
}

// finishRun writes the terminal ledger update on a fresh context so it lands
// even when the job's own context is cancelled or expired.
func (s *TransitionService) finishRun(runID int64, status jobrun.Status, recordsUpdated int, meta runMetadata, errMsg string) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		s.logger.Errorf("Job run %d: failed to encode run metadata: %v", runID, err)
		metaJSON = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()
	if err := s.runRepo.Finish(ctx, runID, status, recordsUpdated, metaJSON, errMsg); err != nil {
		s.logger.Errorf("Job run %d: failed to record terminal status %s: %v", runID, status, err)
	}
}

func (s *TransitionService) alertFailure(runID int64, err error) {
	if s.alerter == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()
	text := fmt.Sprintf("Job %s run %d failed: %v", JobName, runID, err)
	if alertErr := s.alerter.Notify(ctx, text); alertErr != nil {
		s.logger.Errorf("Job run %d: failed to send failure alert: %v", runID, alertErr)
	}
}
