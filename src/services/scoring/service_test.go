package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Backend-Evalhub/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --------- In-memory fakes ---------

type fakeTemplates struct {
	mu        sync.Mutex
	templates map[primitive.ObjectID]*models.Template
	lockCalls int
}

func newFakeTemplates(ts ...*models.Template) *fakeTemplates {
	f := &fakeTemplates{templates: map[primitive.ObjectID]*models.Template{}}
	for _, t := range ts {
		f.templates[t.ID] = t
	}
	return f
}

func (f *fakeTemplates) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.templates[id]
	if !ok {
		return nil, errors.New("template not found")
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTemplates) MarkLocked(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lockCalls++
	if t, ok := f.templates[id]; ok {
		t.Locked = true
	}
	return nil
}

type fakeAssignments struct {
	assigned map[string]*models.Assignment
}

func (f *fakeAssignments) key(e, c, p primitive.ObjectID) string {
	return e.Hex() + c.Hex() + p.Hex()
}

func (f *fakeAssignments) allow(e, c, p, templateID primitive.ObjectID) {
	if f.assigned == nil {
		f.assigned = map[string]*models.Assignment{}
	}
	f.assigned[f.key(e, c, p)] = &models.Assignment{
		EvaluatorID: e, CompanyID: c, ProjectID: p, TemplateID: templateID,
	}
}

func (f *fakeAssignments) Get(ctx context.Context, e, c, p primitive.ObjectID) (*models.Assignment, error) {
	return f.assigned[f.key(e, c, p)], nil
}

// failingAssignments simulates a registry whose lookups error out entirely.
type failingAssignments struct {
	err error
}

func (f *failingAssignments) Get(ctx context.Context, e, c, p primitive.ObjectID) (*models.Assignment, error) {
	return nil, f.err
}

// gatedStore wraps fakeStore with a one-shot gate on Find: the first caller
// captures its read, signals, then parks until the gate is released. Lets a
// test freeze one goroutine on a stale read while another makes progress.
type gatedStore struct {
	*fakeStore
	gateMu  sync.Mutex
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedStore) Find(ctx context.Context, e, c, p primitive.ObjectID) (*models.Submission, error) {
	sub, err := g.fakeStore.Find(ctx, e, c, p)

	g.gateMu.Lock()
	entered, gate := g.entered, g.gate
	g.entered, g.gate = nil, nil
	g.gateMu.Unlock()

	if entered != nil {
		close(entered)
		<-gate
	}
	return sub, err
}

type fakeStore struct {
	mu   sync.Mutex
	subs map[string]*models.Submission
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: map[string]*models.Submission{}}
}

func (f *fakeStore) key(e, c, p primitive.ObjectID) string {
	return e.Hex() + c.Hex() + p.Hex()
}

func (f *fakeStore) Find(ctx context.Context, e, c, p primitive.ObjectID) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[f.key(e, c, p)]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) Upsert(ctx context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *submission
	f.subs[f.key(submission.EvaluatorID, submission.CompanyID, submission.ProjectID)] = &copied
	return nil
}

func (f *fakeStore) RevertToDraft(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.ID == id {
			s.Status = models.SubmissionDraft
			s.TotalScore = nil
			s.WeightedTotal = nil
			s.SubmittedAt = nil
		}
	}
	return nil
}

type fakeAggregator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeAggregator) OnSubmissionFinalized(ctx context.Context, companyID, projectID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

// --------- Fixture ---------

type engineFixture struct {
	engine      *Service
	templates   *fakeTemplates
	assignments *fakeAssignments
	store       *fakeStore
	aggregator  *fakeAggregator

	evaluator primitive.ObjectID
	company   primitive.ObjectID
	project   primitive.ObjectID
	template  *models.Template
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	template := demoTemplate()
	template.ID = primitive.NewObjectID()

	fx := &engineFixture{
		templates:   newFakeTemplates(template),
		assignments: &fakeAssignments{},
		store:       newFakeStore(),
		aggregator:  &fakeAggregator{},
		evaluator:   primitive.NewObjectID(),
		company:     primitive.NewObjectID(),
		project:     primitive.NewObjectID(),
		template:    template,
	}
	fx.assignments.allow(fx.evaluator, fx.company, fx.project, template.ID)
	fx.engine = NewService(fx.templates, fx.assignments, fx.store, fx.aggregator)
	return fx
}

func (fx *engineFixture) input(scores map[string]models.ItemScore) Input {
	return Input{
		EvaluatorID: fx.evaluator,
		CompanyID:   fx.company,
		ProjectID:   fx.project,
		ItemScores:  scores,
	}
}

func fullScores() map[string]models.ItemScore {
	return map[string]models.ItemScore{
		"innovation": {Score: 40},
		"business":   {Score: 30},
		"extra":      {Score: 5},
	}
}

// --------- SaveDraft ---------

func TestSaveDraftRequiresAssignment(t *testing.T) {
	fx := newEngineFixture(t)

	in := fx.input(fullScores())
	in.EvaluatorID = primitive.NewObjectID() // not assigned

	_, err := fx.engine.SaveDraft(context.Background(), in)
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestSaveDraftRejectsUnknownItem(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.engine.SaveDraft(context.Background(), fx.input(map[string]models.ItemScore{
		"no-such-item": {Score: 1},
	}))
	assert.ErrorIs(t, err, ErrInvalidScore)
	assert.Empty(t, fx.store.subs, "invalid input must never reach the store")
}

func TestSaveDraftRejectsOutOfRangeScore(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.engine.SaveDraft(context.Background(), fx.input(map[string]models.ItemScore{
		"innovation": {Score: 51}, // max is 50
	}))
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = fx.engine.SaveDraft(context.Background(), fx.input(map[string]models.ItemScore{
		"innovation": {Score: -1},
	}))
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestSaveDraftUpsertsLastWriteWins(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	first, err := fx.engine.SaveDraft(ctx, fx.input(map[string]models.ItemScore{
		"innovation": {Score: 10},
	}))
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionDraft, first.Status)

	second, err := fx.engine.SaveDraft(ctx, fx.input(map[string]models.ItemScore{
		"innovation": {Score: 20},
	}))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "draft saves must land on the same submission")
	stored, err := fx.store.Find(ctx, fx.evaluator, fx.company, fx.project)
	require.NoError(t, err)
	assert.Equal(t, 20.0, stored.ItemScores["innovation"].Score)
	assert.Nil(t, stored.TotalScore, "drafts carry no computed totals")
}

func TestSaveDraftAllowsPartialScores(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.engine.SaveDraft(context.Background(), fx.input(map[string]models.ItemScore{
		"innovation": {Score: 40},
	}))
	assert.NoError(t, err)
}

func TestDraftLocksTemplateOnFirstUse(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.engine.SaveDraft(context.Background(), fx.input(fullScores()))
	require.NoError(t, err)
	assert.True(t, fx.templates.templates[fx.template.ID].Locked)
}

// --------- Submit ---------

func TestSubmitComputesTotals(t *testing.T) {
	fx := newEngineFixture(t)

	submission, err := fx.engine.Submit(context.Background(), fx.input(fullScores()))
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionSubmitted, submission.Status)
	require.NotNil(t, submission.TotalScore)
	require.NotNil(t, submission.WeightedTotal)
	assert.InDelta(t, 70.0, *submission.TotalScore, 1e-9)
	assert.InDelta(t, 77.0, *submission.WeightedTotal, 1e-9)
	assert.NotNil(t, submission.SubmittedAt)
	assert.Equal(t, 1, fx.aggregator.calls, "submit must trigger aggregation exactly once")
}

func TestSubmitRequiresAllNonBonusItems(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.engine.Submit(context.Background(), fx.input(map[string]models.ItemScore{
		"innovation": {Score: 40}, // business missing
	}))
	assert.ErrorIs(t, err, ErrInvalidScore)
	assert.Equal(t, 0, fx.aggregator.calls)
}

func TestSubmitBonusIsOptional(t *testing.T) {
	fx := newEngineFixture(t)

	submission, err := fx.engine.Submit(context.Background(), fx.input(map[string]models.ItemScore{
		"innovation": {Score: 40},
		"business":   {Score: 30},
	}))
	require.NoError(t, err)
	assert.InDelta(t, 72.0, *submission.WeightedTotal, 1e-9)
}

func TestSubmitIsOneShot(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	first, err := fx.engine.Submit(ctx, fx.input(fullScores()))
	require.NoError(t, err)

	_, err = fx.engine.Submit(ctx, fx.input(map[string]models.ItemScore{
		"innovation": {Score: 1},
		"business":   {Score: 1},
	}))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	// The stored submission is untouched by the failed retry.
	stored, err := fx.store.Find(ctx, fx.evaluator, fx.company, fx.project)
	require.NoError(t, err)
	assert.Equal(t, *first.WeightedTotal, *stored.WeightedTotal)
	assert.Equal(t, 1, fx.aggregator.calls)
}

func TestSubmitAfterDraft(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	draft, err := fx.engine.SaveDraft(ctx, fx.input(map[string]models.ItemScore{
		"innovation": {Score: 10},
	}))
	require.NoError(t, err)

	submission, err := fx.engine.Submit(ctx, fx.input(fullScores()))
	require.NoError(t, err)
	assert.Equal(t, draft.ID, submission.ID)
	assert.Equal(t, models.SubmissionSubmitted, submission.Status)
}

func TestDraftOverSubmittedFails(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	_, err := fx.engine.Submit(ctx, fx.input(fullScores()))
	require.NoError(t, err)

	_, err = fx.engine.SaveDraft(ctx, fx.input(fullScores()))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitRevertsWhenAggregationFails(t *testing.T) {
	fx := newEngineFixture(t)
	fx.aggregator.err = errors.New("store unavailable")
	ctx := context.Background()

	_, err := fx.engine.Submit(ctx, fx.input(fullScores()))
	require.Error(t, err)

	stored, findErr := fx.store.Find(ctx, fx.evaluator, fx.company, fx.project)
	require.NoError(t, findErr)
	assert.Equal(t, models.SubmissionDraft, stored.Status, "failed aggregation must roll the transition back")
	assert.Nil(t, stored.TotalScore)

	// Retry succeeds once the aggregator recovers.
	fx.aggregator.err = nil
	_, err = fx.engine.Submit(ctx, fx.input(fullScores()))
	assert.NoError(t, err)
}

func TestConcurrentDoubleSubmit(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.engine.Submit(ctx, fx.input(fullScores()))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if errors.Is(err, ErrAlreadySubmitted) {
			rejected++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one submit may win")
	assert.Equal(t, attempts-1, rejected)
	assert.Equal(t, 1, fx.aggregator.calls)
}

func TestConcurrentDraftCannotRevertSubmitted(t *testing.T) {
	template := demoTemplate()
	template.ID = primitive.NewObjectID()

	evaluator := primitive.NewObjectID()
	company := primitive.NewObjectID()
	project := primitive.NewObjectID()

	registry := &fakeAssignments{}
	registry.allow(evaluator, company, project, template.ID)

	store := &gatedStore{
		fakeStore: newFakeStore(),
		entered:   make(chan struct{}),
		gate:      make(chan struct{}),
	}
	aggregator := &fakeAggregator{}
	engine := NewService(newFakeTemplates(template), registry, store, aggregator)
	ctx := context.Background()

	input := func(scores map[string]models.ItemScore) Input {
		return Input{EvaluatorID: evaluator, CompanyID: company, ProjectID: project, ItemScores: scores}
	}

	// A draft save parks on its stale read while a full submit races it.
	// Whatever the interleaving, a submission that reached submitted must
	// stay submitted.
	entered, gate := store.entered, store.gate
	draftErr := make(chan error, 1)
	go func() {
		_, err := engine.SaveDraft(ctx, input(map[string]models.ItemScore{
			"innovation": {Score: 10},
		}))
		draftErr <- err
	}()
	<-entered

	submitErr := make(chan error, 1)
	go func() {
		_, err := engine.Submit(ctx, input(fullScores()))
		submitErr <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(gate)

	require.NoError(t, <-draftErr)
	require.NoError(t, <-submitErr)

	stored, err := store.fakeStore.Find(ctx, evaluator, company, project)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionSubmitted, stored.Status,
		"a submitted submission must never revert to draft")
	require.NotNil(t, stored.TotalScore)
	assert.InDelta(t, 70.0, *stored.TotalScore, 1e-9)
	assert.Equal(t, 1, aggregator.calls)
}

func TestRegistryOutageIsNotADenial(t *testing.T) {
	template := demoTemplate()
	template.ID = primitive.NewObjectID()

	outage := errors.New("registry unavailable")
	engine := NewService(newFakeTemplates(template), &failingAssignments{err: outage}, newFakeStore(), &fakeAggregator{})

	in := Input{
		EvaluatorID: primitive.NewObjectID(),
		CompanyID:   primitive.NewObjectID(),
		ProjectID:   primitive.NewObjectID(),
		ItemScores:  fullScores(),
	}

	_, err := engine.SaveDraft(context.Background(), in)
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, ErrNotAssigned)

	_, err = engine.Submit(context.Background(), in)
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, ErrNotAssigned)
}
