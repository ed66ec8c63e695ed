package loader

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shopflow/pipeline/internal/domain"
)

// DefaultChunkSize bounds how many rows share one storage round-trip.
// Chunking amortizes round-trip cost only; final state is identical for
// any chunk size.
const DefaultChunkSize = 1000

// batchSender is the slice of pgx.Tx the submitter needs.
type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Submit applies the dataset's upsert to every row, one pgx batch per
// chunk. It returns the number of rows submitted; it never commits or
// rolls back — the orchestrator owns the unit of work.
func Submit(ctx context.Context, conn batchSender, ds domain.Dataset, rows [][]any, chunkSize int) (int, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	sql := UpsertSQL(ds)
	submitted := 0

	for start := 0; start < len(rows); start += chunkSize {
		end := min(start+chunkSize, len(rows))

		batch := &pgx.Batch{}
		for _, row := range rows[start:end] {
			batch.Queue(sql, row...)
		}

		results := conn.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				// Row numbers are 1-based and account for the header row,
				// matching the coercion pass.
				return submitted, fmt.Errorf("dataset %s: upsert failed at row %d: %w", ds.Name, i+2, err)
			}
		}
		if err := results.Close(); err != nil {
			return submitted, fmt.Errorf("dataset %s: batch close failed: %w", ds.Name, err)
		}

		submitted += end - start
	}

	return submitted, nil
}
