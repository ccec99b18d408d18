// Package emailer calls the external email-notification endpoint that turns
// newly-overdue installments into outbound mail.
package emailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// EventOverdue is the event-type tag sent with the batched overdue trigger.
const EventOverdue = "installment_overdue"

const defaultTimeout = 30 * time.Second

// Summary is the per-call result reported by the notification endpoint.
type Summary struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type triggerRequest struct {
	EventType      string   `json:"event_type"`
	InstallmentIDs []string `json:"installment_ids"`
}

type Client struct {
	url    string
	token  string
	client *http.Client
}

func NewClient(url, token string) *Client {
	return &Client{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// SendOverdueBatch hands the full list of newly-overdue installment ids to
// the notification endpoint in one call and returns its summary counts.
func (c *Client) SendOverdueBatch(ctx context.Context, installmentIDs []uuid.UUID) (Summary, error) {
	ids := make([]string, len(installmentIDs))
	for i, id := range installmentIDs {
		ids[i] = id.String()
	}

	body, err := json.Marshal(triggerRequest{EventType: EventOverdue, InstallmentIDs: ids})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to encode email trigger request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to build email trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Summary{}, fmt.Errorf("email trigger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Summary{}, fmt.Errorf("email trigger returned status %d", resp.StatusCode)
	}

	var summary Summary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return Summary{}, fmt.Errorf("failed to decode email trigger response: %w", err)
	}
	return summary, nil
}
