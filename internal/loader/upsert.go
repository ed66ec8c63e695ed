package loader

import (
	"fmt"
	"strings"

	"github.com/shopflow/pipeline/internal/domain"
)

// IngestedAtColumn is appended to every durable row at submission time.
// It records when the loader last wrote the row, independent of any
// business timestamp in the source record.
const IngestedAtColumn = "_ingested_at"

// UpsertSQL builds the insert-or-update statement for a dataset. The
// conflict key is the dataset's primary key; on conflict every non-key
// column, including the ingestion timestamp, takes the incoming value.
// Last writer wins.
func UpsertSQL(ds domain.Dataset) string {
	columns := append(ds.ColumnNames(), IngestedAtColumn)

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	updates := make([]string, 0, len(columns)-1)
	for _, name := range columns {
		if name == ds.PrimaryKey {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		ds.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		ds.PrimaryKey,
		strings.Join(updates, ", "),
	)
}
