package assignments

import (
	"Backend-Evalhub/src/models"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrAssignmentHasSubmission = errors.New("assignment already has a submission")
	ErrInvalidAssignment       = errors.New("invalid assignment")
)

// Store persists assignment rows. The Mongo implementation lives in
// mongo_store.go; tests use an in-memory fake.
type Store interface {
	UpsertPair(ctx context.Context, assignment *models.Assignment) (created bool, err error)
	Find(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (*models.Assignment, error)
	Delete(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (bool, error)
	ListByEvaluator(ctx context.Context, evaluatorID primitive.ObjectID) ([]models.Assignment, error)
	CountByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

// SubmissionChecker reports whether any submission (draft or submitted)
// exists for an assignment triple. Guards Revoke.
type SubmissionChecker interface {
	Exists(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (bool, error)
}

// Service is the assignment registry: the source of truth for who may
// score what.
type Service struct {
	store       Store
	submissions SubmissionChecker
}

func NewService(store Store, submissions SubmissionChecker) *Service {
	return &Service{store: store, submissions: submissions}
}

// NewMongoService wires the registry to the shared Mongo collections.
func NewMongoService() *Service {
	return NewService(&mongoStore{}, &mongoSubmissionChecker{})
}

// Assign creates assignments for one evaluator against a batch of companies.
// Idempotent: pairs that already exist are skipped, so bulk requests can be
// re-run safely. Returns the number of newly created assignments.
func (s *Service) Assign(ctx context.Context, evaluatorID, projectID, templateID primitive.ObjectID, companyIDs []primitive.ObjectID, deadline *time.Time) (int, error) {
	if evaluatorID.IsZero() || projectID.IsZero() || templateID.IsZero() {
		return 0, ErrInvalidAssignment
	}
	if len(companyIDs) == 0 {
		return 0, ErrInvalidAssignment
	}

	created := 0
	for _, companyID := range companyIDs {
		if companyID.IsZero() {
			return created, ErrInvalidAssignment
		}
		assignment := &models.Assignment{
			EvaluatorID: evaluatorID,
			CompanyID:   companyID,
			ProjectID:   projectID,
			TemplateID:  templateID,
			Deadline:    deadline,
			CreatedAt:   time.Now(),
		}
		isNew, err := s.store.UpsertPair(ctx, assignment)
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}

	log.Printf("[assignments] evaluator=%s project=%s requested=%d created=%d",
		evaluatorID.Hex(), projectID.Hex(), len(companyIDs), created)
	return created, nil
}

// IsAssigned reports whether the evaluator may score the company in the
// project.
func (s *Service) IsAssigned(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (bool, error) {
	assignment, err := s.store.Find(ctx, evaluatorID, companyID, projectID)
	if err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return false, nil
		}
		return false, err
	}
	return assignment != nil, nil
}

// Get returns the assignment for the triple, or ErrAssignmentNotFound.
// The scoring engine uses it to resolve the template for a submission.
func (s *Service) Get(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (*models.Assignment, error) {
	return s.store.Find(ctx, evaluatorID, companyID, projectID)
}

// Revoke removes an assignment. Refused once any submission exists for the
// triple, so scored work is never orphaned.
func (s *Service) Revoke(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) error {
	hasSubmission, err := s.submissions.Exists(ctx, evaluatorID, companyID, projectID)
	if err != nil {
		return err
	}
	if hasSubmission {
		return ErrAssignmentHasSubmission
	}

	deleted, err := s.store.Delete(ctx, evaluatorID, companyID, projectID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAssignmentNotFound
	}
	return nil
}

// ListByEvaluator returns a point-in-time snapshot of the evaluator's
// assignments. Callers re-query for freshness.
func (s *Service) ListByEvaluator(ctx context.Context, evaluatorID primitive.ObjectID) ([]models.Assignment, error) {
	return s.store.ListByEvaluator(ctx, evaluatorID)
}

// CountByProject returns the number of assignment rows in the project.
// Feeds the expected total of ProjectProgress.
func (s *Service) CountByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.store.CountByProject(ctx, projectID)
}
