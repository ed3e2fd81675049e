package aggregation

import (
	"Backend-Evalhub/src/models"
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrAggregateNotFound = errors.New("aggregate not found")

// SubmissionSource reads finalized submissions.
type SubmissionSource interface {
	ListSubmitted(ctx context.Context, companyID, projectID primitive.ObjectID) ([]models.Submission, error)
	CountSubmittedByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
	ListCompaniesWithSubmissions(ctx context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// AssignmentSource counts expected submissions for a project.
type AssignmentSource interface {
	CountByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

// Store persists the derived aggregates.
type Store interface {
	UpsertCompanyAggregate(ctx context.Context, aggregate *models.CompanyAggregate) error
	GetCompanyAggregate(ctx context.Context, companyID, projectID primitive.ObjectID) (*models.CompanyAggregate, error)
	UpsertProjectProgress(ctx context.Context, progress *models.ProjectProgress) error
	GetProjectProgress(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectProgress, error)
}

// Publisher receives the fresh progress snapshot after every recompute.
type Publisher interface {
	Publish(projectID primitive.ObjectID, progress models.ProjectProgress)
}

// Service recomputes CompanyAggregate and ProjectProgress whenever a
// submission finalizes. Always a full recompute from the submitted set,
// never a running average: the result is idempotent and independent of
// submission order.
type Service struct {
	submissions SubmissionSource
	assignments AssignmentSource
	store       Store
	publisher   Publisher

	// companyLocks serializes the read-then-write recompute per
	// (company, project). Different companies aggregate in parallel.
	companyLocks sync.Map

	// projectLocks serializes the progress count-then-write per project,
	// so finalizes for different companies cannot persist a stale count.
	projectLocks sync.Map
}

func NewService(submissions SubmissionSource, assignments AssignmentSource, store Store, publisher Publisher) *Service {
	return &Service{
		submissions: submissions,
		assignments: assignments,
		store:       store,
		publisher:   publisher,
	}
}

func (s *Service) lockFor(companyID, projectID primitive.ObjectID) *sync.Mutex {
	key := companyID.Hex() + ":" + projectID.Hex()
	mu, _ := s.companyLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *Service) projectLockFor(projectID primitive.ObjectID) *sync.Mutex {
	mu, _ := s.projectLocks.LoadOrStore(projectID.Hex(), &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// OnSubmissionFinalized recomputes the company aggregate and the project
// progress, then publishes the progress snapshot. Called synchronously from
// ScoringEngine.Submit; an error here fails the submit.
func (s *Service) OnSubmissionFinalized(ctx context.Context, companyID, projectID primitive.ObjectID) error {
	mu := s.lockFor(companyID, projectID)
	mu.Lock()
	err := s.recomputeCompany(ctx, companyID, projectID)
	mu.Unlock()
	if err != nil {
		return err
	}

	progress, err := s.recomputeProgress(ctx, projectID)
	if err != nil {
		return err
	}

	s.publisher.Publish(projectID, *progress)
	return nil
}

func (s *Service) recomputeCompany(ctx context.Context, companyID, projectID primitive.ObjectID) error {
	submitted, err := s.submissions.ListSubmitted(ctx, companyID, projectID)
	if err != nil {
		return err
	}

	aggregate := &models.CompanyAggregate{
		CompanyID:       companyID,
		ProjectID:       projectID,
		SubmissionCount: int64(len(submitted)),
		UpdatedAt:       time.Now(),
	}

	if len(submitted) > 0 {
		var totalSum, weightedSum float64
		for _, submission := range submitted {
			if submission.TotalScore != nil {
				totalSum += *submission.TotalScore
			}
			if submission.WeightedTotal != nil {
				weightedSum += *submission.WeightedTotal
			}
		}
		n := float64(len(submitted))
		aggregate.AverageTotalScore = totalSum / n
		aggregate.AverageWeightedScore = weightedSum / n
	}

	return s.store.UpsertCompanyAggregate(ctx, aggregate)
}

func (s *Service) recomputeProgress(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectProgress, error) {
	mu := s.projectLockFor(projectID)
	mu.Lock()
	defer mu.Unlock()

	total, err := s.assignments.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	completed, err := s.submissions.CountSubmittedByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	progress := &models.ProjectProgress{
		ProjectID:      projectID,
		TotalExpected:  total,
		CompletedCount: completed,
		UpdatedAt:      time.Now(),
	}
	if total > 0 {
		progress.Percentage = round1(float64(completed) / float64(total) * 100)
	}

	if err := s.store.UpsertProjectProgress(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// GetCompanyAggregate reads the stored aggregate for a company.
func (s *Service) GetCompanyAggregate(ctx context.Context, companyID, projectID primitive.ObjectID) (*models.CompanyAggregate, error) {
	return s.store.GetCompanyAggregate(ctx, companyID, projectID)
}

// GetProjectProgress reads the stored progress. A project nobody has
// aggregated yet reports zero progress instead of an error.
func (s *Service) GetProjectProgress(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectProgress, error) {
	progress, err := s.store.GetProjectProgress(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrAggregateNotFound) {
			return &models.ProjectProgress{ProjectID: projectID}, nil
		}
		return nil, err
	}
	return progress, nil
}

// RebuildProject replays the finalize recompute for every company with
// submissions in the project. Recovery path when aggregates drift or a
// store outage left them stale.
func (s *Service) RebuildProject(ctx context.Context, projectID primitive.ObjectID) error {
	companies, err := s.submissions.ListCompaniesWithSubmissions(ctx, projectID)
	if err != nil {
		return err
	}

	for _, companyID := range companies {
		mu := s.lockFor(companyID, projectID)
		mu.Lock()
		err := s.recomputeCompany(ctx, companyID, projectID)
		mu.Unlock()
		if err != nil {
			return err
		}
	}

	progress, err := s.recomputeProgress(ctx, projectID)
	if err != nil {
		return err
	}
	s.publisher.Publish(projectID, *progress)

	log.Printf("[aggregation] rebuilt project=%s companies=%d", projectID.Hex(), len(companies))
	return nil
}
