package loader

import (
	"errors"
	"testing"
	"time"

	"github.com/shopflow/pipeline/internal/domain"
)

func TestCoerceValue(t *testing.T) {
	if v, err := coerceValue(domain.ColumnInteger, "42"); err != nil || v != int64(42) {
		t.Fatalf("integer coercion: got %v, %v", v, err)
	}
	if v, err := coerceValue(domain.ColumnDecimal, "19.99"); err != nil || v != "19.99" {
		t.Fatalf("decimal coercion should keep the literal: got %v, %v", v, err)
	}
	if v, err := coerceValue(domain.ColumnText, " Mat "); err != nil || v != "Mat" {
		t.Fatalf("text coercion: got %v, %v", v, err)
	}

	v, err := coerceValue(domain.ColumnDate, "2024-03-01")
	if err != nil {
		t.Fatalf("date coercion returned error: %v", err)
	}
	if v.(time.Time) != time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected date value: %v", v)
	}

	if _, err := coerceValue(domain.ColumnTimestamp, "2024-03-01T10:30:00Z"); err != nil {
		t.Fatalf("timestamp coercion returned error: %v", err)
	}
	if _, err := coerceValue(domain.ColumnTimestamp, "2024-03-01 10:30:00"); err != nil {
		t.Fatalf("space-separated timestamp should parse: %v", err)
	}
}

func TestCoerceValueEmptyBecomesNull(t *testing.T) {
	for _, columnType := range []domain.ColumnType{
		domain.ColumnText, domain.ColumnInteger, domain.ColumnDecimal, domain.ColumnDate, domain.ColumnTimestamp,
	} {
		v, err := coerceValue(columnType, "  ")
		if err != nil {
			t.Fatalf("empty %s value should not error: %v", columnType, err)
		}
		if v != nil {
			t.Fatalf("empty %s value should be nil, got %v", columnType, v)
		}
	}
}

func TestBuildRowsAppendsIngestionTimestamp(t *testing.T) {
	ds := productsDataset()
	ingestedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []domain.Record{
		{"id": "1", "name": "Mat", "category": "Sports", "price": "19.99", "supplier": "Acme"},
	}

	rows, err := BuildRows(ds, records, ingestedAt)
	if err != nil {
		t.Fatalf("build returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if len(row) != len(ds.Columns)+1 {
		t.Fatalf("expected %d args, got %d", len(ds.Columns)+1, len(row))
	}
	if row[len(row)-1] != ingestedAt {
		t.Fatalf("expected ingestion timestamp as final arg, got %v", row[len(row)-1])
	}
}

func TestBuildRowsMalformedRecord(t *testing.T) {
	ds := productsDataset()
	records := []domain.Record{
		{"id": "1", "name": "Mat", "category": "Sports", "price": "19.99", "supplier": "Acme"},
		{"id": "2", "name": "Ball", "category": "Sports", "price": "cheap", "supplier": "Acme"},
	}

	_, err := BuildRows(ds, records, time.Now().UTC())
	if err == nil {
		t.Fatalf("expected malformed record error")
	}

	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedRecordError, got %T", err)
	}
	if malformed.Dataset != "products" || malformed.Column != "price" || malformed.Row != 3 {
		t.Fatalf("unexpected error location: %+v", malformed)
	}
	if malformed.Value != "cheap" {
		t.Fatalf("expected offending value in error, got %q", malformed.Value)
	}
}
