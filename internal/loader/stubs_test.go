package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shopflow/pipeline/internal/domain"
)

// tableStore is the in-memory durable store behind the stub transactions.
// Rows only land here when the outer transaction commits, mirroring the
// storage engine's buffering of uncommitted writes.
type tableStore struct {
	datasets map[string]domain.Dataset
	rows     map[string]map[string][]any
}

func newTableStore(datasets []domain.Dataset) *tableStore {
	store := &tableStore{
		datasets: map[string]domain.Dataset{},
		rows:     map[string]map[string][]any{},
	}
	for _, ds := range datasets {
		store.datasets[ds.Table] = ds
		store.rows[ds.Table] = map[string][]any{}
	}
	return store
}

func (s *tableStore) apply(ops []upsertOp) {
	for _, op := range ops {
		table := strings.Fields(op.sql)[2]
		ds, ok := s.datasets[table]
		if !ok {
			panic(fmt.Sprintf("upsert against unknown table %s", table))
		}
		pkIdx := -1
		for i, col := range ds.Columns {
			if col.Name == ds.PrimaryKey {
				pkIdx = i
			}
		}
		s.rows[table][fmt.Sprint(op.args[pkIdx])] = op.args
	}
}

func (s *tableStore) rowCount() int {
	total := 0
	for _, rows := range s.rows {
		total += len(rows)
	}
	return total
}

type upsertOp struct {
	sql  string
	args []any
}

// stubDB satisfies txBeginner.
type stubDB struct {
	store      *tableStore
	beginCalls int
	outer      *stubTx
	failTable  string
}

func (db *stubDB) Begin(ctx context.Context) (pgx.Tx, error) {
	db.beginCalls++
	db.outer = &stubTx{store: db.store, failTable: db.failTable}
	return db.outer, nil
}

// stubTx implements the slice of pgx.Tx the orchestrator touches. The
// embedded interface panics on anything unexpected.
type stubTx struct {
	pgx.Tx

	store     *tableStore
	parent    *stubTx
	failTable string

	pending    []upsertOp
	execs      []string
	committed  bool
	rolledBack bool
}

func (t *stubTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return &stubTx{store: t.store, parent: t, failTable: t.failTable}, nil
}

func (t *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return &stubBatchResults{tx: t, queued: b.QueuedQueries}
}

func (t *stubTx) Commit(ctx context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.committed = true
	if t.parent != nil {
		t.parent.pending = append(t.parent.pending, t.pending...)
		return nil
	}
	t.store.apply(t.pending)
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	t.pending = nil
	return nil
}

type stubBatchResults struct {
	tx     *stubTx
	queued []*pgx.QueuedQuery
	idx    int
}

func (r *stubBatchResults) Exec() (pgconn.CommandTag, error) {
	q := r.queued[r.idx]
	r.idx++
	if r.tx.failTable != "" && strings.Contains(q.SQL, r.tx.failTable) {
		return pgconn.CommandTag{}, errors.New("connection reset by peer")
	}
	r.tx.pending = append(r.tx.pending, upsertOp{sql: q.SQL, args: q.Arguments})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *stubBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }
func (r *stubBatchResults) QueryRow() pgx.Row        { return nil }
func (r *stubBatchResults) Close() error             { return nil }

// stubLedger records audit calls without touching storage.
type stubLedger struct {
	began    []domain.LoadAttempt
	finished []finishCall
}

type finishCall struct {
	batchID    uuid.UUID
	finishedAt time.Time
	status     domain.LoadStatus
	details    any
}

func (l *stubLedger) Begin(ctx context.Context, tx pgx.Tx, attempt domain.LoadAttempt) error {
	l.began = append(l.began, attempt)
	return nil
}

func (l *stubLedger) Finish(ctx context.Context, tx pgx.Tx, batchID uuid.UUID, finishedAt time.Time, status domain.LoadStatus, details any) error {
	l.finished = append(l.finished, finishCall{batchID: batchID, finishedAt: finishedAt, status: status, details: details})
	return nil
}

func (l *stubLedger) List(ctx context.Context, limit, offset int) ([]domain.LoadAttempt, error) {
	return nil, nil
}
