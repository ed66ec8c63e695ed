package quality

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/shopflow/pipeline/internal/domain"
	"github.com/shopflow/pipeline/internal/loader"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Finding is one data quality issue located in a source file.
type Finding struct {
	File    string
	Row     int
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: row %d %s", f.File, f.Row, f.Message)
}

// Report summarizes a validation pass over the raw datasets.
type Report struct {
	Findings    []Finding
	RowsChecked map[string]int
}

// CheckDir validates every configured dataset file in dir. Validation is
// advisory: it never blocks the loader, which only requires coercible
// values.
func CheckDir(dir string) (Report, error) {
	report := Report{RowsChecked: map[string]int{}}
	source := loader.Source{Dir: dir}

	for _, ds := range domain.DefaultDatasets() {
		path, err := source.Resolve(ds)
		if err != nil {
			return report, err
		}

		records, err := loader.ReadRecords(path, ds)
		if err != nil {
			return report, fmt.Errorf("dataset %s: %w", ds.Name, err)
		}

		file := filepath.Base(path)
		report.RowsChecked[ds.Name] = len(records)
		for i, record := range records {
			row := i + 2 // 1-based, after the header row
			report.Findings = append(report.Findings, checkRecord(ds, file, row, record)...)
		}
	}

	return report, nil
}

func checkRecord(ds domain.Dataset, file string, row int, record domain.Record) []Finding {
	var findings []Finding
	add := func(format string, args ...any) {
		findings = append(findings, Finding{File: file, Row: row, Message: fmt.Sprintf(format, args...)})
	}

	for _, col := range ds.Columns {
		if record[col.Name] == "" {
			add("null in '%s'", col.Name)
		}
	}

	switch ds.Name {
	case "customers":
		if email := record["email"]; email != "" && !emailPattern.MatchString(email) {
			add("invalid email '%s'", email)
		}
		if date := record["registration_date"]; date != "" {
			if _, err := time.Parse("2006-01-02", date); err != nil {
				add("bad date '%s' expected 2006-01-02", date)
			}
		}
	case "products":
		if raw := record["price"]; raw != "" {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				add("invalid price '%s'", raw)
			} else if price <= 0 {
				add("non-positive price '%s'", raw)
			}
		}
	case "transactions":
		if raw := record["quantity"]; raw != "" {
			quantity, err := strconv.Atoi(raw)
			if err != nil {
				add("invalid quantity '%s'", raw)
			} else if quantity <= 0 {
				add("non-positive quantity '%s'", raw)
			}
		}
		if ts := record["timestamp"]; ts != "" {
			if _, err := time.Parse(time.RFC3339, ts); err != nil {
				add("bad timestamp '%s' expected RFC3339", ts)
			}
		}
	}

	return findings
}

// WriteLog appends the report's findings to a validation log file,
// creating parent directories as needed.
func (r Report) WriteLog(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open validation log: %w", err)
	}
	defer f.Close()

	now := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	for _, finding := range r.Findings {
		if _, err := fmt.Fprintf(f, "[%s] ERROR: %s\n", now, finding); err != nil {
			return fmt.Errorf("failed to write validation log: %w", err)
		}
	}

	log.Printf("[VALIDATE] %d findings written to %s", len(r.Findings), path)
	return f.Close()
}
