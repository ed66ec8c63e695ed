package domain

import (
	"errors"
	"fmt"
)

// ColumnType represents the storage type of a dataset column.
type ColumnType string

const (
	ColumnText      ColumnType = "text"
	ColumnInteger   ColumnType = "integer"
	ColumnDecimal   ColumnType = "decimal"
	ColumnDate      ColumnType = "date"
	ColumnTimestamp ColumnType = "timestamp"
)

// Column pairs a column name with its storage type.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Dataset describes one load target: the source file stem, the durable
// table, the ordered column list, and the conflict key used for upserts.
type Dataset struct {
	Name       string   `json:"name"`
	Table      string   `json:"table"`
	FileStem   string   `json:"file_stem"`
	Columns    []Column `json:"columns"`
	PrimaryKey string   `json:"primary_key"`
}

// Record maps column names to raw field values for one dataset row.
// Missing columns are treated as empty values, never as an error.
type Record map[string]string

// Validate checks the dataset descriptor invariants.
func (d Dataset) Validate() error {
	if d.Name == "" {
		return errors.New("dataset name is required")
	}
	if d.Table == "" {
		return fmt.Errorf("dataset %s: target table is required", d.Name)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset %s: column list is empty", d.Name)
	}
	if d.PrimaryKey == "" {
		return fmt.Errorf("dataset %s: primary key column is required", d.Name)
	}
	for _, col := range d.Columns {
		if col.Name == d.PrimaryKey {
			return nil
		}
	}
	return fmt.Errorf("dataset %s: primary key %q is not a declared column", d.Name, d.PrimaryKey)
}

// ColumnNames returns the declared column names in order.
func (d Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Name
	}
	return names
}

// DefaultDatasets returns the configured datasets in their fixed load order.
func DefaultDatasets() []Dataset {
	return []Dataset{
		{
			Name:     "customers",
			Table:    "public.customers",
			FileStem: "customers",
			Columns: []Column{
				{Name: "id", Type: ColumnInteger},
				{Name: "name", Type: ColumnText},
				{Name: "email", Type: ColumnText},
				{Name: "registration_date", Type: ColumnDate},
				{Name: "country", Type: ColumnText},
			},
			PrimaryKey: "id",
		},
		{
			Name:     "products",
			Table:    "public.products",
			FileStem: "products",
			Columns: []Column{
				{Name: "id", Type: ColumnInteger},
				{Name: "name", Type: ColumnText},
				{Name: "category", Type: ColumnText},
				{Name: "price", Type: ColumnDecimal},
				{Name: "supplier", Type: ColumnText},
			},
			PrimaryKey: "id",
		},
		{
			Name:     "transactions",
			Table:    "public.transactions",
			FileStem: "transactions",
			Columns: []Column{
				{Name: "id", Type: ColumnInteger},
				{Name: "customer_id", Type: ColumnInteger},
				{Name: "product_id", Type: ColumnInteger},
				{Name: "quantity", Type: ColumnInteger},
				{Name: "timestamp", Type: ColumnTimestamp},
				{Name: "payment_method", Type: ColumnText},
			},
			PrimaryKey: "id",
		},
	}
}
