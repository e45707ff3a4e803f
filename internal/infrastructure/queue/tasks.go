package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/services/importer"
)

// Task types
const (
	TaskTypeImportDataset = "import:dataset"
)

// ImportTaskPayload carries everything the worker needs to run one import
type ImportTaskPayload struct {
	BatchID     uuid.UUID       `json:"batch_id"`
	DatasetName string          `json:"dataset_name"`
	Params      importer.Params `json:"params"`
}

// NewImportTask builds the asynq task for a dataset import
func NewImportTask(batchID uuid.UUID, datasetName string, params importer.Params) (*asynq.Task, error) {
	payload, err := json.Marshal(ImportTaskPayload{
		BatchID:     batchID,
		DatasetName: datasetName,
		Params:      params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal import task payload: %w", err)
	}
	return asynq.NewTask(TaskTypeImportDataset, payload), nil
}

// ParseImportTask decodes an import task payload
func ParseImportTask(task *asynq.Task) (*ImportTaskPayload, error) {
	var payload ImportTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal import task payload: %w", err)
	}
	return &payload, nil
}
