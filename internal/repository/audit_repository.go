package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopflow/pipeline/internal/domain"
)

// rowQuerier is the slice of pgxpool.Pool the read path needs.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type auditRepository struct {
	pool rowQuerier
}

// NewAuditRepository wires an audit ledger backed by pgxpool. The pool is
// only used for reads; writes always go through the caller's transaction.
func NewAuditRepository(pool *pgxpool.Pool) AuditLedger {
	r := &auditRepository{}
	if pool != nil {
		r.pool = pool
	}
	return r
}

func (r *auditRepository) Begin(ctx context.Context, tx pgx.Tx, attempt domain.LoadAttempt) error {
	details := attempt.Details
	if details == nil {
		details = json.RawMessage("{}")
	}

	_, err := tx.Exec(
		ctx,
		`INSERT INTO public.load_audit (batch_id, load_date, started_at_utc, status, details)
		 VALUES ($1, $2, $3, $4, $5)`,
		attempt.BatchID,
		attempt.LoadDate,
		attempt.StartedAt,
		attempt.Status,
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit begin: %w", err)
	}

	return nil
}

func (r *auditRepository) Finish(ctx context.Context, tx pgx.Tx, batchID uuid.UUID, finishedAt time.Time, status domain.LoadStatus, details any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE public.load_audit SET finished_at_utc = $1, status = $2, details = $3 WHERE batch_id = $4`,
		finishedAt,
		status,
		payload,
		batchID,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit finish: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("audit finish for batch %s updated %d rows", batchID, tag.RowsAffected())
	}

	return nil
}

func (r *auditRepository) List(ctx context.Context, limit, offset int) ([]domain.LoadAttempt, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("audit repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT batch_id, load_date, started_at_utc, finished_at_utc, status, details
		 FROM public.load_audit
		 ORDER BY started_at_utc DESC
		 LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list load attempts: %w", err)
	}
	defer rows.Close()

	attempts := []domain.LoadAttempt{}
	for rows.Next() {
		var (
			attempt    domain.LoadAttempt
			loadDate   pgtype.Date
			finishedAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&attempt.BatchID,
			&loadDate,
			&attempt.StartedAt,
			&finishedAt,
			&attempt.Status,
			&attempt.Details,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan load attempt: %w", scanErr)
		}

		if loadDate.Valid {
			attempt.LoadDate = loadDate.Time
		}
		if finishedAt.Valid {
			value := finishedAt.Time
			attempt.FinishedAt = &value
		}

		attempts = append(attempts, attempt)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate load attempts: %w", rowsErr)
	}

	return attempts, nil
}
