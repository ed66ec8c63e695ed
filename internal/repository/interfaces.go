package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shopflow/pipeline/internal/domain"
)

// AuditLedger records the lifecycle of load attempts. Begin and Finish run
// against the caller's transaction so the ledger entry and the data
// mutations share one unit of work.
type AuditLedger interface {
	// Begin writes a new attempt in running status.
	Begin(ctx context.Context, tx pgx.Tx, attempt domain.LoadAttempt) error
	// Finish transitions an attempt to a terminal status with a details
	// payload (per-dataset stats on success, an error description on
	// failure). Exactly one terminal Finish per batch id.
	Finish(ctx context.Context, tx pgx.Tx, batchID uuid.UUID, finishedAt time.Time, status domain.LoadStatus, details any) error
	// List returns recorded attempts, most recent first.
	List(ctx context.Context, limit, offset int) ([]domain.LoadAttempt, error)
}
