package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shopflow/pipeline/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned when a source file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrSourceMissing is returned when no source file exists for a dataset.
	ErrSourceMissing = errors.New("source file missing")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

	sourceExtensions = []string{".csv", ".xlsx"}
)

// Source resolves and reads record files for datasets out of one directory.
type Source struct {
	Dir string
}

// Resolve locates the dataset's source file. Missing sources fail the run
// before any transaction opens, so the error carries the expected path.
func (s Source) Resolve(ds domain.Dataset) (string, error) {
	for _, ext := range sourceExtensions {
		path := filepath.Join(s.Dir, ds.FileStem+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: dataset %s expects %s or %s in %s",
		ErrSourceMissing, ds.Name, ds.FileStem+".csv", ds.FileStem+".xlsx", s.Dir)
}

// ReadRecords parses the source file into records keyed by the dataset's
// declared columns. Columns absent from the file come back empty; columns
// not declared by the dataset are ignored.
func ReadRecords(path string, ds domain.Dataset) ([]domain.Record, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	var rows [][]string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = parseCSV(payload)
	case ".xlsx":
		rows, err = parseExcel(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	return recordsFromRows(ds, rows)
}

func parseCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func parseExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

func recordsFromRows(ds domain.Dataset, rows [][]string) ([]domain.Record, error) {
	var header []string
	var records []domain.Record

	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		if header == nil {
			header = make([]string, len(row))
			for i, cell := range row {
				header[i] = strings.TrimSpace(cell)
			}
			continue
		}

		record := domain.Record{}
		for _, col := range ds.Columns {
			record[col.Name] = ""
		}
		for i, name := range header {
			if _, declared := record[name]; !declared {
				continue
			}
			if i < len(row) {
				record[name] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, record)
	}

	if header == nil {
		return nil, errors.New("no header row detected")
	}
	return records, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
