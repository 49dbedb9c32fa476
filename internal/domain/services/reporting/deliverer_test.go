package reporting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeytrap-lab/internal/config"
	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/pkg/logger"
)

func testReport() models.FinalReport {
	return models.FinalReport{
		SessionID:                 "sess-1",
		ScamDetected:              true,
		ScamType:                  models.ScamTypeUPIFraud,
		ConfidenceLevel:           0.82,
		TotalMessagesExchanged:    7,
		EngagementDurationSeconds: 340,
		ExtractedIntelligence: models.ExtractedIntelligence{
			UPIIDs: []string{"fraud@paytm"},
		},
		AgentNotes: "notes",
	}
}

func newTestDeliverer(url string) *Deliverer {
	return New(config.CallbackConfig{
		URL:        url,
		MaxRetries: 3,
		RetryDelay: 5 * time.Millisecond,
	}, logger.NewDefault())
}

func TestDeliverSuccess(t *testing.T) {
	var got models.FinalReport
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "honeytrap-lab/1.0", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	record := newTestDeliverer(srv.URL).Deliver(context.Background(), testReport())

	assert.Equal(t, models.DeliveryDelivered, record.Status)
	assert.Equal(t, 1, record.Attempts)
	require.NotNil(t, record.DeliveredAt)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.True(t, got.ScamDetected)
	assert.Equal(t, []string{"fraud@paytm"}, got.ExtractedIntelligence.UPIIDs)
}

func TestDeliverRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	record := newTestDeliverer(srv.URL).Deliver(context.Background(), testReport())

	assert.Equal(t, models.DeliveryDelivered, record.Status)
	assert.Equal(t, 3, record.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverAllAttemptsFail(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	record := newTestDeliverer(srv.URL).Deliver(context.Background(), testReport())

	assert.Equal(t, models.DeliveryFailed, record.Status)
	assert.Equal(t, 3, record.Attempts)
	assert.Equal(t, int32(3), calls.Load())
	assert.Nil(t, record.DeliveredAt)
}

func TestDeliverSkippedWithoutURL(t *testing.T) {
	record := newTestDeliverer("").Deliver(context.Background(), testReport())

	assert.Equal(t, models.DeliverySkipped, record.Status)
	assert.Zero(t, record.Attempts)
}

func TestDeliverSendsAuthToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := New(config.CallbackConfig{
		URL:        srv.URL,
		AuthToken:  "secret-token",
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	}, logger.NewDefault())

	record := d.Deliver(context.Background(), testReport())

	assert.Equal(t, models.DeliveryDelivered, record.Status)
	assert.Equal(t, "Bearer secret-token", auth)
}

func TestDeliverHonorsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New(config.CallbackConfig{
		URL:        srv.URL,
		MaxRetries: 5,
		RetryDelay: time.Hour, // cancel fires long before the backoff elapses
	}, logger.NewDefault())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan models.DeliveryRecord, 1)
	go func() { done <- d.Deliver(ctx, testReport()) }()

	select {
	case record := <-done:
		assert.Equal(t, models.DeliveryFailed, record.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("delivery did not return after context cancellation")
	}
}
