package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"honeytrap-lab/internal/config"
	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/pkg/logger"
)

const userAgent = "honeytrap-lab/1.0"

// Deliverer posts final session reports to the configured callback.
// Delivery is best-effort: it retries with exponential backoff and
// reports the outcome, but never propagates a failure to the caller.
type Deliverer struct {
	httpClient *http.Client
	logger     *logger.Logger
	cfg        config.CallbackConfig
}

// New creates a report deliverer
func New(cfg config.CallbackConfig, log *logger.Logger) *Deliverer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Deliverer{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("reporting"),
		cfg:        cfg,
	}
}

// Deliver sends the report, retrying up to MaxRetries times with the
// delay doubling between attempts. It returns the delivery record.
func (d *Deliverer) Deliver(ctx context.Context, report models.FinalReport) models.DeliveryRecord {
	record := models.DeliveryRecord{
		SessionID: report.SessionID,
		Report:    report,
		Status:    models.DeliveryPending,
		CreatedAt: time.Now().UTC(),
	}

	if d.cfg.URL == "" {
		d.logger.Warn().Str("session_id", report.SessionID).Msg("no callback URL configured, skipping delivery")
		record.Status = models.DeliverySkipped
		return record
	}

	payload, err := json.Marshal(report)
	if err != nil {
		d.logger.Error().Err(err).Str("session_id", report.SessionID).Msg("failed to encode report")
		record.Status = models.DeliveryFailed
		return record
	}

	delay := d.cfg.RetryDelay
	for attempt := 1; attempt <= d.cfg.MaxRetries; attempt++ {
		record.Attempts = attempt
		if err := d.post(ctx, payload); err != nil {
			d.logger.Warn().Err(err).
				Str("session_id", report.SessionID).
				Int("attempt", attempt).
				Msg("report delivery attempt failed")

			if attempt == d.cfg.MaxRetries {
				break
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				d.logger.Warn().Str("session_id", report.SessionID).Msg("delivery canceled")
				record.Status = models.DeliveryFailed
				return record
			}
			delay *= 2
			continue
		}

		now := time.Now().UTC()
		record.Status = models.DeliveryDelivered
		record.DeliveredAt = &now
		d.logger.Info().
			Str("session_id", report.SessionID).
			Int("attempt", attempt).
			Msg("report delivered")
		return record
	}

	d.logger.Error().
		Str("session_id", report.SessionID).
		Int("attempts", record.Attempts).
		Msg("all delivery attempts failed")
	record.Status = models.DeliveryFailed
	return record
}

func (d *Deliverer) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, "POST", d.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if d.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+d.cfg.AuthToken)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	default:
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
}
