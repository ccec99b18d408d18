package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"installment_job/internal/domain/agency"
	"installment_job/internal/domain/installment"
	"installment_job/internal/domain/notification"
	"installment_job/internal/infra/emailer"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EmailSender triggers the external email-notification mechanism for a batch
// of newly-overdue installments.
type EmailSender interface {
	SendOverdueBatch(ctx context.Context, installmentIDs []uuid.UUID) (emailer.Summary, error)
}

// NotifierService runs the best-effort downstream stages after a successful
// overdue sweep: in-app notification generation (deduplicated per
// installment) and the batched email trigger. Its errors are collected for
// the run ledger, never propagated — the core status transition has already
// completed by the time it runs.
type NotifierService struct {
	instRepo  installment.Repository
	notifRepo notification.Repository
	emailer   EmailSender // nil disables the email stage
	logger    *logrus.Logger
}

func NewNotifierService(
	ir installment.Repository,
	nr notification.Repository,
	es EmailSender,
	logger *logrus.Logger,
) *NotifierService {
	return &NotifierService{
		instRepo:  ir,
		notifRepo: nr,
		emailer:   es,
		logger:    logger,
	}
}

// GenerateOverdueNotifications creates one in-app notification per
// newly-overdue installment, skipping installments that already have one.
// Per-item errors are collected so one bad item does not block the rest.
func (s *NotifierService) GenerateOverdueNotifications(ctx context.Context, results []AgencyResult) (int, []string) {
	created := 0
	var errs []string
	for _, res := range results {
		for _, id := range res.NewlyOverdueIDs {
			ok, err := s.createInstallmentNotification(ctx, res.AgencyID, notification.TypeOverduePayment, id)
			if err != nil {
				s.logger.Errorf("Failed to create overdue notification for installment %s: %v", id, err)
				errs = append(errs, fmt.Sprintf("installment %s: %v", id, err))
				continue
			}
			if ok {
				created++
			}
		}
	}
	return created, errs
}

// GenerateDueSoonReminders creates upcoming-payment notifications for
// pending installments of the agency due within its configured window.
// Dedup follows the same (agency, type, installment) key, so each
// installment is reminded about at most once.
func (s *NotifierService) GenerateDueSoonReminders(ctx context.Context, ag *agency.Agency, localToday time.Time) (int, []string) {
	if ag.DueSoonDays <= 0 {
		return 0, nil
	}

	upcoming, err := s.instRepo.ListDueSoon(ctx, ag.ID, localToday, ag.DueSoonDays)
	if err != nil {
		s.logger.Errorf("Failed to list due-soon installments for agency %s: %v", ag.ID, err)
		return 0, []string{fmt.Sprintf("agency %s: %v", ag.ID, err)}
	}

	created := 0
	var errs []string
	for _, inst := range upcoming {
		ok, err := s.createInstallmentNotification(ctx, ag.ID, notification.TypeUpcomingPayment, inst.ID)
		if err != nil {
			s.logger.Errorf("Failed to create due-soon reminder for installment %s: %v", inst.ID, err)
			errs = append(errs, fmt.Sprintf("installment %s: %v", inst.ID, err))
			continue
		}
		if ok {
			created++
		}
	}
	return created, errs
}

// createInstallmentNotification inserts a notification for the installment
// unless one of the same type already exists. Returns whether a new record
// was created.
func (s *NotifierService) createInstallmentNotification(ctx context.Context, agencyID uuid.UUID, typ notification.Type, installmentID uuid.UUID) (bool, error) {
	exists, err := s.notifRepo.ExistsForInstallment(ctx, agencyID, typ, installmentID)
	if err != nil {
		return false, fmt.Errorf("dedup lookup failed: %w", err)
	}
	if exists {
		s.logger.Debugf("Notification of type %s for installment %s already exists. Skipping.", typ, installmentID)
		return false, nil
	}

	inst, err := s.instRepo.GetByID(ctx, installmentID)
	if err != nil {
		return false, fmt.Errorf("failed to load installment: %w", err)
	}

	n := buildNotification(typ, inst)
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}
	return true, nil
}

func buildNotification(typ notification.Type, inst *installment.Installment) *notification.Notification {
	amount := fmt.Sprintf("%.2f", float64(inst.AmountCents)/100)
	due := inst.DueDate.Format("2006-01-02")

	var title, message string
	switch typ {
	case notification.TypeUpcomingPayment:
		title = "Installment due soon"
		message = fmt.Sprintf("An installment of %s is due on %s.", amount, due)
	default:
		title = "Installment overdue"
		message = fmt.Sprintf("An installment of %s due on %s is now overdue.", amount, due)
	}

	meta, _ := json.Marshal(map[string]string{
		"installment_id": inst.ID.String(),
		"plan_id":        inst.PlanID.String(),
		"due_date":       due,
	})

	return &notification.Notification{
		AgencyID: inst.AgencyID,
		Type:     typ,
		Title:    title,
		Message:  message,
		Link:     fmt.Sprintf("/plans/%s/installments/%s", inst.PlanID, inst.ID),
		Metadata: meta,
	}
}

// TriggerOverdueEmails hands the full batch of newly-overdue installment ids
// to the external notification endpoint in a single call. A failure is
// returned as a collected error string, never as a hard error.
func (s *NotifierService) TriggerOverdueEmails(ctx context.Context, installmentIDs []uuid.UUID) (emailer.Summary, []string) {
	if s.emailer == nil {
		s.logger.Info("Email notification endpoint not configured. Skipping email stage.")
		return emailer.Summary{Skipped: len(installmentIDs)}, nil
	}

	summary, err := s.emailer.SendOverdueBatch(ctx, installmentIDs)
	if err != nil {
		s.logger.Errorf("Email trigger for %d installments failed: %v", len(installmentIDs), err)
		return emailer.Summary{Failed: len(installmentIDs)}, []string{err.Error()}
	}
	s.logger.Infof("Email trigger completed: %d sent, %d failed, %d skipped.",
		summary.Sent, summary.Failed, summary.Skipped)
	return summary, nil
}
