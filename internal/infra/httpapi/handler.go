package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"installment_job/internal/app"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SecretHeader carries the static shared secret the external scheduler
// authenticates with.
const SecretHeader = "X-Job-Secret"

// TransitionRunner is the job entry point shared with the cron scheduler.
type TransitionRunner interface {
	Run(ctx context.Context) (*app.RunResult, error)
}

// RunResponse is the trigger endpoint's response body.
type RunResponse struct {
	Success              bool               `json:"success"`
	RecordsUpdated       int                `json:"recordsUpdated"`
	NotificationsCreated int                `json:"notificationsCreated"`
	EmailsSent           int                `json:"emailsSent"`
	Agencies             []app.AgencyResult `json:"agencies"`
	NotificationErrors   []string           `json:"notificationErrors,omitempty"`
	EmailErrors          []string           `json:"emailErrors,omitempty"`
	Error                string             `json:"error,omitempty"`
}

// JobHandler exposes the overdue-check job to an external scheduler.
type JobHandler struct {
	svc    TransitionRunner
	secret string
	logger *logrus.Logger
}

func NewJobHandler(svc TransitionRunner, secret string, logger *logrus.Logger) *JobHandler {
	return &JobHandler{svc: svc, secret: secret, logger: logger}
}

func (h *JobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	// Authenticate before touching the job: a rejected request must leave
	// no trace in the run ledger.
	given := r.Header.Get(SecretHeader)
	if given == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	result, err := h.svc.Run(r.Context())
	if err != nil {
		h.logger.Errorf("Trigger endpoint: job run failed: %v", err)
		// Operational detail lives in the run ledger; the caller gets a
		// minimal error body.
		writeJSON(w, http.StatusInternalServerError, RunResponse{
			Success:  false,
			Agencies: []app.AgencyResult{},
			Error:    "installment status transition job failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Success:              true,
		RecordsUpdated:       result.RecordsUpdated,
		NotificationsCreated: result.NotificationsCreated,
		EmailsSent:           result.EmailsSent,
		Agencies:             nonNilAgencies(result.Agencies),
		NotificationErrors:   result.NotificationErrors,
		EmailErrors:          result.EmailErrors,
	})
}

func nonNilAgencies(agencies []app.AgencyResult) []app.AgencyResult {
	if agencies == nil {
		return []app.AgencyResult{}
	}
	for i := range agencies {
		if agencies[i].NewlyOverdueIDs == nil {
			agencies[i].NewlyOverdueIDs = []uuid.UUID{}
		}
	}
	return agencies
}

func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SecretHeader)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
