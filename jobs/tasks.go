package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeDispatchProcess processes one pending dispatch record.
	TaskTypeDispatchProcess = "dispatch:process"
	// TaskTypeTRMIngest pulls the market exchange rate from the public
	// endpoint into the local table.
	TaskTypeTRMIngest = "trm:ingest"
)

// DispatchProcessPayload identifies one dispatch record by its natural key.
type DispatchProcessPayload struct {
	ClientNIT string    `json:"client_nit"`
	DueDate   time.Time `json:"due_date"`
	EmailType string    `json:"email_type"`
}

// NewDispatchProcessTask constructs a dispatch-record processing task.
func NewDispatchProcessTask(payload DispatchProcessPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDispatchProcess, data), nil
}

// NewTRMIngestTask constructs a rate-ingestion task. The payload is empty:
// the handler always ingests the latest published rate.
func NewTRMIngestTask() *asynq.Task {
	return asynq.NewTask(TaskTypeTRMIngest, nil)
}
