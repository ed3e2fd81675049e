package jobs

import (
	"Backend-Evalhub/src/database"
	"Backend-Evalhub/src/models"
	"Backend-Evalhub/src/services/aggregation"
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleDeadlineReminderTask checks which of the evaluator's assignments in
// the project are still unsubmitted past their deadline. The actual
// notification is handed off to the external push layer; here we only log
// and leave a fresh progress publish to the rebuild path.
func HandleDeadlineReminderTask(ctx context.Context, t *asynq.Task) error {
	var payload DeadlineReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Println("❌ Payload decode error:", err)
		return err
	}

	evaluatorID, err := primitive.ObjectIDFromHex(payload.EvaluatorID)
	if err != nil {
		return err
	}
	projectID, err := primitive.ObjectIDFromHex(payload.ProjectID)
	if err != nil {
		return err
	}

	cursor, err := database.AssignmentCollection.Find(ctx, bson.M{
		"evaluatorId": evaluatorID,
		"projectId":   projectID,
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var assignments []models.Assignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return err
	}

	pending := 0
	for _, assignment := range assignments {
		count, err := database.SubmissionCollection.CountDocuments(ctx, bson.M{
			"evaluatorId": assignment.EvaluatorID,
			"companyId":   assignment.CompanyID,
			"projectId":   assignment.ProjectID,
			"status":      models.SubmissionSubmitted,
		})
		if err != nil {
			return err
		}
		if count == 0 {
			pending++
		}
	}

	if pending == 0 {
		log.Println("✅ Evaluator has no pending assignments:", payload.EvaluatorID)
		return nil
	}

	log.Printf("⏰ Deadline reminder: evaluator=%s project=%s pending=%d",
		payload.EvaluatorID, payload.ProjectID, pending)
	return nil
}

// newRebuildHandler binds the rebuild task to the shared aggregation
// service so the replay serializes with live submissions.
func newRebuildHandler(agg *aggregation.Service) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RebuildAggregatesPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			log.Println("❌ Payload decode error:", err)
			return err
		}

		projectID, err := primitive.ObjectIDFromHex(payload.ProjectID)
		if err != nil {
			return err
		}

		if err := agg.RebuildProject(ctx, projectID); err != nil {
			log.Println("❌ Aggregate rebuild failed:", err)
			return err
		}

		log.Println("✅ Aggregates rebuilt for project:", payload.ProjectID)
		return nil
	}
}

// StartWorker runs the asynq server. Call in a goroutine after InitRedis;
// a missing Redis simply disables background jobs.
func StartWorker(agg *aggregation.Service) {
	if database.RedisURI == "" {
		log.Println("⚠️ Redis not available. Background worker will not start.")
		return
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: database.RedisURI},
		asynq.Config{Concurrency: 5},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDeadlineReminder, HandleDeadlineReminderTask)
	mux.Handle(TypeRebuildAggregates, newRebuildHandler(agg))

	if err := srv.Run(mux); err != nil {
		log.Println("❌ Asynq worker stopped:", err)
	}
}
