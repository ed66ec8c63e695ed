package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopflow/pipeline/internal/domain"
)

var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05.000000",
	"2006-01-02",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
}

// MalformedRecordError reports a value that cannot be coerced to its
// column's storage type. One malformed record fails the whole attempt.
type MalformedRecordError struct {
	Dataset string
	Row     int
	Column  string
	Type    domain.ColumnType
	Value   string
	Err     error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("dataset %s row %d: column %s: cannot coerce %q to %s: %v",
		e.Dataset, e.Row, e.Column, e.Value, e.Type, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// BuildRows coerces a batch of records into positional argument rows for
// the dataset's upsert statement. The coercion happens once, up front, so
// a malformed value surfaces before any storage round-trip for the batch.
// Each row's final argument is the ingestion timestamp.
func BuildRows(ds domain.Dataset, records []domain.Record, ingestedAt time.Time) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for i, record := range records {
		row := make([]any, 0, len(ds.Columns)+1)
		for _, col := range ds.Columns {
			value, err := coerceValue(col.Type, record[col.Name])
			if err != nil {
				// Row numbers are 1-based and account for the header row.
				return nil, &MalformedRecordError{
					Dataset: ds.Name,
					Row:     i + 2,
					Column:  col.Name,
					Type:    col.Type,
					Value:   record[col.Name],
					Err:     err,
				}
			}
			row = append(row, value)
		}
		row = append(row, ingestedAt)
		rows = append(rows, row)
	}
	return rows, nil
}

// coerceValue converts a raw field into the Go value submitted for the
// column's storage type. Empty values become NULL; validation beyond type
// coercion is the quality stage's concern, not the loader's.
func coerceValue(columnType domain.ColumnType, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	switch columnType {
	case domain.ColumnText:
		return raw, nil
	case domain.ColumnInteger:
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer")
		}
		return value, nil
	case domain.ColumnDecimal:
		// Validated here, submitted as the raw literal so NUMERIC parses
		// it without a float round-trip.
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("not a decimal")
		}
		return raw, nil
	case domain.ColumnDate:
		for _, layout := range dateLayouts {
			if value, err := time.Parse(layout, raw); err == nil {
				return value, nil
			}
		}
		return nil, fmt.Errorf("unrecognized date format")
	case domain.ColumnTimestamp:
		for _, layout := range timestampLayouts {
			if value, err := time.Parse(layout, raw); err == nil {
				return value, nil
			}
		}
		return nil, fmt.Errorf("unrecognized timestamp format")
	default:
		return nil, fmt.Errorf("unknown column type %s", columnType)
	}
}
