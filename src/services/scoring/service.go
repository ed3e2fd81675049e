package scoring

import (
	"Backend-Evalhub/src/models"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotAssigned        = errors.New("evaluator is not assigned to this company")
	ErrInvalidScore       = errors.New("invalid score")
	ErrAlreadySubmitted   = errors.New("submission already submitted")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// TemplateSource resolves and locks templates.
type TemplateSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Template, error)
	MarkLocked(ctx context.Context, id primitive.ObjectID) error
}

// AssignmentSource gates entry: a submission is only accepted for an
// existing assignment, and the assignment names the template to score
// against. Get returns (nil, nil) when the triple has no assignment; an
// error means the lookup itself failed.
type AssignmentSource interface {
	Get(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (*models.Assignment, error)
}

// Store persists submissions keyed by the (evaluator, company, project)
// triple.
type Store interface {
	Find(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (*models.Submission, error)
	Upsert(ctx context.Context, submission *models.Submission) error
	RevertToDraft(ctx context.Context, id primitive.ObjectID) error
}

// Aggregator is notified synchronously after a submission finalizes.
type Aggregator interface {
	OnSubmissionFinalized(ctx context.Context, companyID, projectID primitive.ObjectID) error
}

// Input carries one evaluator's scores for one company. The evaluator id
// comes from the authenticated caller, never from the request body.
type Input struct {
	EvaluatorID    primitive.ObjectID
	CompanyID      primitive.ObjectID
	ProjectID      primitive.ObjectID
	ItemScores     map[string]models.ItemScore
	OverallComment string
}

// Service is the scoring engine: it validates scores against the assigned
// template and drives the draft -> submitted state machine.
type Service struct {
	templates   TemplateSource
	assignments AssignmentSource
	store       Store
	aggregator  Aggregator

	// submitLocks serializes SaveDraft and Submit per submission key so the
	// draft -> submitted transition is one-way even when a draft save and a
	// submit race on the same submission.
	submitLocks sync.Map
}

func NewService(templates TemplateSource, assignments AssignmentSource, store Store, aggregator Aggregator) *Service {
	return &Service{
		templates:   templates,
		assignments: assignments,
		store:       store,
		aggregator:  aggregator,
	}
}

func submissionKey(evaluatorID, companyID, projectID primitive.ObjectID) string {
	return evaluatorID.Hex() + ":" + companyID.Hex() + ":" + projectID.Hex()
}

func (s *Service) lockFor(key string) *sync.Mutex {
	mu, _ := s.submitLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// resolve gates the input through the assignment registry and loads the
// template named by the assignment. A missing assignment is ErrNotAssigned;
// a failed lookup keeps its own error so the caller sees an outage as an
// outage, not a denial.
func (s *Service) resolve(ctx context.Context, in Input) (*models.Assignment, *models.Template, error) {
	assignment, err := s.assignments.Get(ctx, in.EvaluatorID, in.CompanyID, in.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if assignment == nil {
		return nil, nil, ErrNotAssigned
	}

	template, err := s.templates.GetByID(ctx, assignment.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	return assignment, template, nil
}

// validateScores checks every entry before anything is written: keys must
// belong to the template and each score must lie in [0, maxScore].
func validateScores(template *models.Template, scores map[string]models.ItemScore) error {
	for itemID, entry := range scores {
		item := template.ItemByID(itemID)
		if item == nil {
			return fmt.Errorf("%w: unknown item id %q", ErrInvalidScore, itemID)
		}
		if entry.Score < 0 {
			return fmt.Errorf("%w: item %q score must be >= 0", ErrInvalidScore, itemID)
		}
		if item.MaxScore > 0 && entry.Score > item.MaxScore {
			return fmt.Errorf("%w: item %q score exceeds max %.2f", ErrInvalidScore, itemID, item.MaxScore)
		}
	}
	return nil
}

// requireComplete enforces that every non-bonus item is scored. Only Submit
// demands completeness; drafts may be partial.
func requireComplete(template *models.Template, scores map[string]models.ItemScore) error {
	for _, item := range template.Items {
		if item.Bonus {
			continue
		}
		if _, ok := scores[item.ID]; !ok {
			return fmt.Errorf("%w: item %q is not scored", ErrInvalidScore, item.ID)
		}
	}
	return nil
}

// SaveDraft validates and upserts a draft submission. Evaluators may call it
// repeatedly; the last write wins. A submitted submission can no longer be
// drafted over: the read-check-write holds the same per-key mutex as Submit,
// so a draft save racing a submit can never roll the status back.
func (s *Service) SaveDraft(ctx context.Context, in Input) (*models.Submission, error) {
	_, template, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := validateScores(template, in.ItemScores); err != nil {
		return nil, err
	}

	mu := s.lockFor(submissionKey(in.EvaluatorID, in.CompanyID, in.ProjectID))
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.store.Find(ctx, in.EvaluatorID, in.CompanyID, in.ProjectID)
	if err != nil && !errors.Is(err, ErrSubmissionNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == models.SubmissionSubmitted {
		return nil, ErrAlreadySubmitted
	}

	submission := s.buildSubmission(in, template, existing)
	submission.Status = models.SubmissionDraft

	if err := s.store.Upsert(ctx, submission); err != nil {
		return nil, err
	}
	if !template.Locked {
		if err := s.templates.MarkLocked(ctx, template.ID); err != nil {
			log.Println("⚠️ Failed to lock template:", err)
		}
	}
	return submission, nil
}

// Submit finalizes the submission: full validation, completeness check,
// score computation, the one-way draft -> submitted transition, and the
// synchronous aggregation trigger. The per-key mutex makes the transition
// atomic under concurrent double-submits; the second caller gets
// ErrAlreadySubmitted.
func (s *Service) Submit(ctx context.Context, in Input) (*models.Submission, error) {
	_, template, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := validateScores(template, in.ItemScores); err != nil {
		return nil, err
	}
	if err := requireComplete(template, in.ItemScores); err != nil {
		return nil, err
	}

	mu := s.lockFor(submissionKey(in.EvaluatorID, in.CompanyID, in.ProjectID))
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.store.Find(ctx, in.EvaluatorID, in.CompanyID, in.ProjectID)
	if err != nil && !errors.Is(err, ErrSubmissionNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == models.SubmissionSubmitted {
		return nil, ErrAlreadySubmitted
	}

	totalScore, weightedTotal := ComputeTotals(template, in.ItemScores)
	now := time.Now()

	submission := s.buildSubmission(in, template, existing)
	submission.Status = models.SubmissionSubmitted
	submission.TotalScore = &totalScore
	submission.WeightedTotal = &weightedTotal
	submission.SubmittedAt = &now

	if err := s.store.Upsert(ctx, submission); err != nil {
		return nil, err
	}
	if !template.Locked {
		if err := s.templates.MarkLocked(ctx, template.ID); err != nil {
			log.Println("⚠️ Failed to lock template:", err)
		}
	}

	// The transition only counts together with its aggregation. When the
	// recompute fails the submission goes back to draft and the caller
	// retries the whole submit.
	if err := s.aggregator.OnSubmissionFinalized(ctx, in.CompanyID, in.ProjectID); err != nil {
		if revertErr := s.store.RevertToDraft(ctx, submission.ID); revertErr != nil {
			log.Println("❌ Failed to revert submission to draft:", revertErr)
		}
		return nil, err
	}

	log.Printf("[scoring] submitted evaluator=%s company=%s project=%s weighted=%.2f",
		in.EvaluatorID.Hex(), in.CompanyID.Hex(), in.ProjectID.Hex(), weightedTotal)
	return submission, nil
}

// GetForEvaluator reads back the evaluator's own submission for the pair.
func (s *Service) GetForEvaluator(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (*models.Submission, error) {
	return s.store.Find(ctx, evaluatorID, companyID, projectID)
}

func (s *Service) buildSubmission(in Input, template *models.Template, existing *models.Submission) *models.Submission {
	now := time.Now()
	submission := &models.Submission{
		EvaluatorID:    in.EvaluatorID,
		CompanyID:      in.CompanyID,
		ProjectID:      in.ProjectID,
		TemplateID:     template.ID,
		ItemScores:     in.ItemScores,
		OverallComment: in.OverallComment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if existing != nil {
		submission.ID = existing.ID
		submission.CreatedAt = existing.CreatedAt
	} else {
		submission.ID = primitive.NewObjectID()
	}
	return submission
}
