package jobs

import (
	"Backend-Evalhub/src/database"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// ScheduleDeadlineReminder enqueues a reminder that fires at the assignment
// deadline. No-op when asynq is not initialized (dev without Redis).
func ScheduleDeadlineReminder(evaluatorID, projectID string, deadline time.Time) {
	if database.AsynqClient == nil {
		log.Println("⚠️ Asynq client not initialized. Skipping reminder scheduling.")
		return
	}

	task, err := NewDeadlineReminderTask(evaluatorID, projectID)
	if err != nil {
		log.Println("❌ Failed to build reminder task:", err)
		return
	}

	info, err := database.AsynqClient.Enqueue(task, asynq.ProcessAt(deadline))
	if err != nil {
		log.Println("❌ Failed to enqueue reminder task:", err)
		return
	}
	log.Printf("✅ Reminder scheduled id=%s at=%s", info.ID, deadline.Format(time.RFC3339))
}

// EnqueueRebuildAggregates queues an aggregate rebuild for a project.
func EnqueueRebuildAggregates(projectID string) error {
	if database.AsynqClient == nil {
		log.Println("⚠️ Asynq client not initialized. Skipping rebuild enqueue.")
		return nil
	}

	task, err := NewRebuildAggregatesTask(projectID)
	if err != nil {
		return err
	}
	_, err = database.AsynqClient.Enqueue(task)
	return err
}
