package installment

import "time"

// ShouldTransition reports whether a pending installment due on dueDate is
// overdue at the agency-local moment described by localDate and localMinute.
// An installment stays pending through the close of business on its due date:
// it transitions once the due date is in the past, or on the due date itself
// strictly after the cutoff minute. At the exact cutoff minute it does NOT
// transition.
//
// Callers are responsible for filtering: only installments with status
// pending whose plan is active may be evaluated.
func ShouldTransition(dueDate, localDate time.Time, localMinute, cutoffMinute int) bool {
	due := dateOnly(dueDate)
	today := dateOnly(localDate)

	if due.Before(today) {
		return true
	}
	if due.Equal(today) {
		return localMinute > cutoffMinute
	}
	return false
}

// dateOnly strips clock and zone so dates from different locations compare
// by their calendar components.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
