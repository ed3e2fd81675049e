package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeDeadlineReminder = "assignment:deadline-reminder"

type DeadlineReminderPayload struct {
	EvaluatorID string `json:"evaluator_id"`
	ProjectID   string `json:"project_id"`
}

func NewDeadlineReminderTask(evaluatorID, projectID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DeadlineReminderPayload{EvaluatorID: evaluatorID, ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDeadlineReminder, payload), nil
}

const TypeRebuildAggregates = "aggregate:rebuild"

type RebuildAggregatesPayload struct {
	ProjectID string `json:"project_id"`
}

func NewRebuildAggregatesTask(projectID string) (*asynq.Task, error) {
	payload, err := json.Marshal(RebuildAggregatesPayload{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRebuildAggregates, payload), nil
}
