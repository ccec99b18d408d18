package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"time"

	"installment_job/internal/domain/agency"
	"installment_job/internal/domain/installment"
	"installment_job/internal/domain/jobrun"
	"installment_job/internal/domain/notification"
	"installment_job/internal/infra/emailer"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// --- agency.Repository fake ---

type fakeAgencyRepo struct {
	agencies []*agency.Agency
	listErr  error
}

func (f *fakeAgencyRepo) GetByID(_ context.Context, id uuid.UUID) (*agency.Agency, error) {
	for _, a := range f.agencies {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAgencyRepo) ListActive(_ context.Context) ([]*agency.Agency, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.agencies, nil
}

// --- installment.Repository fake ---

// fakeItem pairs an installment with its plan's lifecycle state.
type fakeItem struct {
	inst       installment.Installment
	planStatus installment.PlanStatus
}

type fakeInstallmentRepo struct {
	items map[uuid.UUID]*fakeItem

	// markErrs is consumed one entry per MarkOverdue call; a nil entry means
	// the call proceeds normally.
	markErrs  []error
	markCalls int
}

func newFakeInstallmentRepo() *fakeInstallmentRepo {
	return &fakeInstallmentRepo{items: make(map[uuid.UUID]*fakeItem)}
}

func (f *fakeInstallmentRepo) add(inst installment.Installment, planStatus installment.PlanStatus) {
	f.items[inst.ID] = &fakeItem{inst: inst, planStatus: planStatus}
}

func (f *fakeInstallmentRepo) GetByID(_ context.Context, id uuid.UUID) (*installment.Installment, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := it.inst
	return &c, nil
}

// MarkOverdue mirrors the production guard semantics: pending status, active
// plan, not yet processed today, due before today or due today past cutoff.
func (f *fakeInstallmentRepo) MarkOverdue(_ context.Context, agencyID uuid.UUID, localToday time.Time, cutoffPassed bool) ([]uuid.UUID, error) {
	f.markCalls++
	if len(f.markErrs) > 0 {
		err := f.markErrs[0]
		f.markErrs = f.markErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	ids := make([]uuid.UUID, 0)
	for id, it := range f.items {
		if it.inst.AgencyID != agencyID ||
			it.inst.Status != installment.StatusPending ||
			it.planStatus != installment.PlanActive {
			continue
		}
		if it.inst.LastProcessedDate.Valid && !it.inst.LastProcessedDate.Time.Before(localToday) {
			continue
		}
		due := it.inst.DueDate
		if due.Before(localToday) || (due.Equal(localToday) && cutoffPassed) {
			it.inst.Status = installment.StatusOverdue
			it.inst.LastProcessedDate = sql.NullTime{Time: localToday, Valid: true}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeInstallmentRepo) ListDueSoon(_ context.Context, agencyID uuid.UUID, localToday time.Time, withinDays int) ([]*installment.Installment, error) {
	out := make([]*installment.Installment, 0)
	limit := localToday.AddDate(0, 0, withinDays)
	for _, it := range f.items {
		if it.inst.AgencyID != agencyID ||
			it.inst.Status != installment.StatusPending ||
			it.planStatus != installment.PlanActive {
			continue
		}
		due := it.inst.DueDate
		if due.After(localToday) && !due.After(limit) {
			c := it.inst
			out = append(out, &c)
		}
	}
	return out, nil
}

// --- jobrun.Repository fake ---

type finishCall struct {
	runID          int64
	status         jobrun.Status
	recordsUpdated int
	metadata       json.RawMessage
	errMsg         string
}

type fakeRunRepo struct {
	nextID   int64
	startErr error
	starts   []string
	finishes []finishCall
}

func (f *fakeRunRepo) Start(_ context.Context, jobName string) (*jobrun.Run, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.nextID++
	f.starts = append(f.starts, jobName)
	return &jobrun.Run{ID: f.nextID, JobName: jobName, Status: jobrun.StatusRunning, StartedAt: time.Now()}, nil
}

func (f *fakeRunRepo) Finish(_ context.Context, runID int64, status jobrun.Status, recordsUpdated int, metadata json.RawMessage, errMsg string) error {
	f.finishes = append(f.finishes, finishCall{runID, status, recordsUpdated, metadata, errMsg})
	return nil
}

// --- notification.Repository fake ---

type fakeNotificationRepo struct {
	created   []*notification.Notification
	createErr error
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) ExistsForInstallment(_ context.Context, agencyID uuid.UUID, typ notification.Type, installmentID uuid.UUID) (bool, error) {
	for _, n := range f.created {
		if n.AgencyID != agencyID || n.Type != typ {
			continue
		}
		var meta map[string]string
		if err := json.Unmarshal(n.Metadata, &meta); err != nil {
			continue
		}
		if meta["installment_id"] == installmentID.String() {
			return true, nil
		}
	}
	return false, nil
}

// --- EmailSender fake ---

type fakeEmailSender struct {
	summary emailer.Summary
	err     error
	batches [][]uuid.UUID
}

func (f *fakeEmailSender) SendOverdueBatch(_ context.Context, ids []uuid.UUID) (emailer.Summary, error) {
	f.batches = append(f.batches, ids)
	if f.err != nil {
		return emailer.Summary{}, f.err
	}
	return f.summary, nil
}

// --- alert.Client fake ---

type fakeAlerter struct {
	texts []string
}

func (f *fakeAlerter) Notify(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return nil
}
