package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubBeginner struct {
	tx *stubTx
}

func (b *stubBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return b.tx, nil
}

// stubTx implements the slice of pgx.Tx the package touches. The embedded
// interface panics on anything unexpected.
type stubTx struct {
	pgx.Tx

	execs      []string
	failExec   bool
	committed  bool
	rolledBack bool
}

func (t *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.failExec {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	t.execs = append(t.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

func TestRunInTxCommitsOnSuccess(t *testing.T) {
	tx := &stubTx{}
	called := false

	err := runInTx(context.Background(), &stubBeginner{tx: tx}, func(got pgx.Tx) error {
		called = true
		if got != tx {
			t.Fatalf("expected the opened transaction to be passed through")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("runInTx returned error: %v", err)
	}
	if !called {
		t.Fatalf("expected the function to run")
	}
	if !tx.committed || tx.rolledBack {
		t.Fatalf("expected commit without rollback, got committed=%v rolledBack=%v", tx.committed, tx.rolledBack)
	}
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	tx := &stubTx{}
	boom := errors.New("boom")

	err := runInTx(context.Background(), &stubBeginner{tx: tx}, func(pgx.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if !tx.rolledBack || tx.committed {
		t.Fatalf("expected rollback without commit, got committed=%v rolledBack=%v", tx.committed, tx.rolledBack)
	}
}

func TestRunInTxRollsBackOnPanic(t *testing.T) {
	tx := &stubTx{}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected the panic to propagate")
		}
		if !tx.rolledBack {
			t.Fatalf("expected rollback on panic")
		}
	}()

	_ = runInTx(context.Background(), &stubBeginner{tx: tx}, func(pgx.Tx) error {
		panic("boom")
	})
}
