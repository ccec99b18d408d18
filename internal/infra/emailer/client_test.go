package emailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOverdueBatch(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			EventType      string   `json:"event_type"`
			InstallmentIDs []string `json:"installment_ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, EventOverdue, req.EventType)
		assert.Equal(t, []string{ids[0].String(), ids[1].String()}, req.InstallmentIDs)

		_ = json.NewEncoder(w).Encode(Summary{Sent: 2, Skipped: 0})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	summary, err := c.SendOverdueBatch(context.Background(), ids)

	require.NoError(t, err)
	assert.Equal(t, Summary{Sent: 2}, summary)
}

func TestSendOverdueBatchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.SendOverdueBatch(context.Background(), []uuid.UUID{uuid.New()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSendOverdueBatchConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse subsequent connections

	c := NewClient(srv.URL, "")
	_, err := c.SendOverdueBatch(context.Background(), []uuid.UUID{uuid.New()})

	require.Error(t, err)
}
