package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of in-app notification.
type Type string

const (
	TypeOverduePayment  Type = "overdue_payment"
	TypeUpcomingPayment Type = "upcoming_payment"
)

// Notification is an in-app notification shown to agency users. It is a
// write-once artifact of the scheduling subsystem: created at most once per
// (agency, type, installment) regardless of how many times the job runs.
type Notification struct {
	ID       uuid.UUID
	AgencyID uuid.UUID
	Type     Type
	Title    string
	Message  string
	Link     string
	// Metadata carries at least {"installment_id": "..."} and is the dedup
	// lookup key together with AgencyID and Type.
	Metadata  json.RawMessage
	CreatedAt time.Time
}
