package loader

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shopflow/pipeline/internal/domain"
	"github.com/shopflow/pipeline/internal/repository"
)

// Config carries the orchestrator's explicit configuration. Zero values
// fall back to the defaults: current UTC date, DefaultChunkSize, and the
// standard dataset roster.
type Config struct {
	DataDir   string
	ChunkSize int
	LoadDate  time.Time
	Datasets  []domain.Dataset
}

// txBeginner is satisfied by *pgxpool.Pool.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Orchestrator sequences one load attempt end-to-end inside a single unit
// of work: schema ensure, audit begin, every dataset load, terminal audit.
type Orchestrator struct {
	db     txBeginner
	ledger repository.AuditLedger
	cfg    Config

	now        func() time.Time
	newBatchID func() uuid.UUID
}

// New creates a load orchestrator.
func New(db txBeginner, ledger repository.AuditLedger, cfg Config) *Orchestrator {
	if len(cfg.Datasets) == 0 {
		cfg.Datasets = domain.DefaultDatasets()
	}
	return &Orchestrator{
		db:         db,
		ledger:     ledger,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
		newBatchID: uuid.New,
	}
}

// Run executes one load attempt and returns its batch identifier.
//
// Failure semantics: any error after the audit begin still commits the
// outer transaction so the ledger durably records the failed attempt,
// while every data mutation is discarded. The dataset loads run inside a
// nested transaction (savepoint); rolling back to the savepoint discards
// the mutations and clears the aborted statement state, after which the
// failed status lands on the still-open outer transaction. The original
// error is always the one returned.
func (o *Orchestrator) Run(ctx context.Context) (uuid.UUID, error) {
	for _, ds := range o.cfg.Datasets {
		if err := ds.Validate(); err != nil {
			return uuid.Nil, err
		}
	}

	// Fail fast on missing sources, before any unit of work opens.
	source := Source{Dir: o.cfg.DataDir}
	paths := make(map[string]string, len(o.cfg.Datasets))
	for _, ds := range o.cfg.Datasets {
		path, err := source.Resolve(ds)
		if err != nil {
			return uuid.Nil, err
		}
		paths[ds.Name] = path
	}

	batchID := o.newBatchID()
	started := o.now()
	loadDate := o.cfg.LoadDate
	if loadDate.IsZero() {
		loadDate = started.Truncate(24 * time.Hour)
	}

	tx, err := o.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := o.ensureSchema(ctx, tx); err != nil {
		return uuid.Nil, err
	}

	if err := o.ledger.Begin(ctx, tx, domain.LoadAttempt{
		BatchID:   batchID,
		LoadDate:  loadDate,
		StartedAt: started,
		Status:    domain.LoadStatusRunning,
	}); err != nil {
		return uuid.Nil, err
	}

	stats, loadErr := o.loadDatasets(ctx, tx, paths)
	finished := o.now()

	if loadErr != nil {
		failure := map[string]string{"error": loadErr.Error()}
		if err := o.ledger.Finish(ctx, tx, batchID, finished, domain.LoadStatusFailed, failure); err != nil {
			log.Printf("[LOAD] batch %s: failed to record failure: %v", batchID, err)
			return batchID, loadErr
		}
		if err := tx.Commit(ctx); err != nil {
			log.Printf("[LOAD] batch %s: failed to commit failure audit: %v", batchID, err)
			return batchID, loadErr
		}
		log.Printf("[LOAD] load failed. batch_id=%s: %v", batchID, loadErr)
		return batchID, loadErr
	}

	if err := o.ledger.Finish(ctx, tx, batchID, finished, domain.LoadStatusSucceeded, stats); err != nil {
		return batchID, err
	}
	if err := tx.Commit(ctx); err != nil {
		return batchID, fmt.Errorf("failed to commit load transaction: %w", err)
	}

	log.Printf("[LOAD] load succeeded. batch_id=%s", batchID)
	return batchID, nil
}

// loadDatasets runs every dataset load inside a nested transaction. On any
// failure the savepoint is rolled back before returning, leaving the outer
// transaction clean for the failed audit write.
func (o *Orchestrator) loadDatasets(ctx context.Context, tx pgx.Tx, paths map[string]string) (map[string]domain.DatasetStats, error) {
	inner, err := tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin dataset transaction: %w", err)
	}

	stats := make(map[string]domain.DatasetStats, len(o.cfg.Datasets))
	for _, ds := range o.cfg.Datasets {
		records, err := ReadRecords(paths[ds.Name], ds)
		if err != nil {
			_ = inner.Rollback(ctx)
			return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
		}

		rows, err := BuildRows(ds, records, o.now())
		if err != nil {
			_ = inner.Rollback(ctx)
			return nil, err
		}

		submitted, err := Submit(ctx, inner, ds, rows, o.cfg.ChunkSize)
		if err != nil {
			_ = inner.Rollback(ctx)
			return nil, err
		}

		stats[ds.Name] = domain.DatasetStats{RowsSubmitted: submitted}
		log.Printf("[LOAD] dataset %s: %d rows submitted", ds.Name, submitted)
	}

	if err := inner.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to release dataset transaction: %w", err)
	}
	return stats, nil
}

// ensureSchema creates the audit ledger table and the ingestion-metadata
// columns if absent. Idempotent; runs inside the attempt's transaction.
func (o *Orchestrator) ensureSchema(ctx context.Context, tx pgx.Tx) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS public.load_audit (
			batch_id        UUID PRIMARY KEY,
			load_date       DATE NOT NULL,
			started_at_utc  TIMESTAMPTZ NOT NULL,
			finished_at_utc TIMESTAMPTZ,
			status          TEXT NOT NULL,
			details         JSONB
		)`,
	}
	for _, ds := range o.cfg.Datasets {
		statements = append(statements, fmt.Sprintf(
			"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s TIMESTAMPTZ", ds.Table, IngestedAtColumn,
		))
	}

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
