package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LoadStatus is the lifecycle state of a load attempt.
type LoadStatus string

const (
	LoadStatusRunning   LoadStatus = "running"
	LoadStatusSucceeded LoadStatus = "succeeded"
	LoadStatusFailed    LoadStatus = "failed"
)

// DatasetStats summarizes one dataset's contribution to a load attempt.
// Insert vs update counts are not distinguished: the upsert applies the
// same statement either way, so only the submitted row count is reported.
type DatasetStats struct {
	RowsSubmitted int `json:"rows_submitted"`
}

// LoadAttempt is one audit ledger entry. Entries are append-only; every
// attempt records exactly one begin and one terminal finish.
type LoadAttempt struct {
	BatchID    uuid.UUID       `json:"batch_id"`
	LoadDate   time.Time       `json:"load_date"`
	StartedAt  time.Time       `json:"started_at_utc"`
	FinishedAt *time.Time      `json:"finished_at_utc,omitempty"`
	Status     LoadStatus      `json:"status"`
	Details    json.RawMessage `json:"details,omitempty"`
}
