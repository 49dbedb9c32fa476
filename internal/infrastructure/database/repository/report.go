package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"honeytrap-lab/internal/domain/models"
)

// ReportRepository persists delivered session reports
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create inserts a delivery record
func (r *ReportRepository) Create(ctx context.Context, rec *models.DeliveryRecord) error {
	intel, err := json.Marshal(rec.Report.ExtractedIntelligence)
	if err != nil {
		return fmt.Errorf("failed to encode intelligence: %w", err)
	}

	query := `
		INSERT INTO session_reports (
			id, session_id, scam_detected, scam_type, confidence,
			total_messages, duration_seconds, intelligence, agent_notes,
			delivery_status, delivery_attempts, termination_reason,
			delivered_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	_, err = r.pool.Exec(ctx, query,
		uuid.New(), rec.SessionID, rec.Report.ScamDetected, rec.Report.ScamType,
		rec.Report.ConfidenceLevel, rec.Report.TotalMessagesExchanged,
		rec.Report.EngagementDurationSeconds, intel, rec.Report.AgentNotes,
		rec.Status, rec.Attempts, rec.TerminationReason,
		rec.DeliveredAt, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetBySession retrieves the most recent record for a session
func (r *ReportRepository) GetBySession(ctx context.Context, sessionID string) (*models.DeliveryRecord, error) {
	query := `
		SELECT session_id, scam_detected, scam_type, confidence,
			   total_messages, duration_seconds, intelligence, agent_notes,
			   delivery_status, delivery_attempts, termination_reason,
			   delivered_at, created_at
		FROM session_reports
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var (
		rec   models.DeliveryRecord
		intel []byte
	)
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&rec.SessionID, &rec.Report.ScamDetected, &rec.Report.ScamType,
		&rec.Report.ConfidenceLevel, &rec.Report.TotalMessagesExchanged,
		&rec.Report.EngagementDurationSeconds, &intel, &rec.Report.AgentNotes,
		&rec.Status, &rec.Attempts, &rec.TerminationReason,
		&rec.DeliveredAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	rec.Report.SessionID = rec.SessionID
	if err := json.Unmarshal(intel, &rec.Report.ExtractedIntelligence); err != nil {
		return nil, fmt.Errorf("failed to decode intelligence: %w", err)
	}
	return &rec, nil
}

// ListRecent returns the most recent delivery records
func (r *ReportRepository) ListRecent(ctx context.Context, limit int) ([]*models.DeliveryRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT session_id, scam_detected, scam_type, confidence,
			   total_messages, duration_seconds, intelligence, agent_notes,
			   delivery_status, delivery_attempts, termination_reason,
			   delivered_at, created_at
		FROM session_reports
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var records []*models.DeliveryRecord
	for rows.Next() {
		var (
			rec   models.DeliveryRecord
			intel []byte
		)
		if err := rows.Scan(
			&rec.SessionID, &rec.Report.ScamDetected, &rec.Report.ScamType,
			&rec.Report.ConfidenceLevel, &rec.Report.TotalMessagesExchanged,
			&rec.Report.EngagementDurationSeconds, &intel, &rec.Report.AgentNotes,
			&rec.Status, &rec.Attempts, &rec.TerminationReason,
			&rec.DeliveredAt, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		rec.Report.SessionID = rec.SessionID
		if err := json.Unmarshal(intel, &rec.Report.ExtractedIntelligence); err != nil {
			return nil, fmt.Errorf("failed to decode intelligence: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountDelivered returns the number of successfully delivered reports
func (r *ReportRepository) CountDelivered(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM session_reports WHERE delivery_status = $1`,
		models.DeliveryDelivered,
	).Scan(&count)
	return count, err
}
