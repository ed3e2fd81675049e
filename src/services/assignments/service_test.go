package assignments

import (
	"context"
	"testing"
	"time"

	"Backend-Evalhub/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --------- In-memory fakes ---------

type memStore struct {
	rows map[string]*models.Assignment
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]*models.Assignment{}}
}

func (m *memStore) key(e, c, p primitive.ObjectID) string {
	return e.Hex() + c.Hex() + p.Hex()
}

func (m *memStore) UpsertPair(ctx context.Context, a *models.Assignment) (bool, error) {
	k := m.key(a.EvaluatorID, a.CompanyID, a.ProjectID)
	if _, exists := m.rows[k]; exists {
		return false, nil
	}
	copied := *a
	m.rows[k] = &copied
	return true, nil
}

func (m *memStore) Find(ctx context.Context, e, c, p primitive.ObjectID) (*models.Assignment, error) {
	a, ok := m.rows[m.key(e, c, p)]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	return a, nil
}

func (m *memStore) Delete(ctx context.Context, e, c, p primitive.ObjectID) (bool, error) {
	k := m.key(e, c, p)
	if _, ok := m.rows[k]; !ok {
		return false, nil
	}
	delete(m.rows, k)
	return true, nil
}

func (m *memStore) ListByEvaluator(ctx context.Context, e primitive.ObjectID) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range m.rows {
		if a.EvaluatorID == e {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) CountByProject(ctx context.Context, p primitive.ObjectID) (int64, error) {
	var n int64
	for _, a := range m.rows {
		if a.ProjectID == p {
			n++
		}
	}
	return n, nil
}

type memChecker struct {
	has map[string]bool
}

func (m *memChecker) mark(e, c, p primitive.ObjectID) {
	if m.has == nil {
		m.has = map[string]bool{}
	}
	m.has[e.Hex()+c.Hex()+p.Hex()] = true
}

func (m *memChecker) Exists(ctx context.Context, e, c, p primitive.ObjectID) (bool, error) {
	return m.has[e.Hex()+c.Hex()+p.Hex()], nil
}

// --------- Tests ---------

func TestAssignIsIdempotent(t *testing.T) {
	store := newMemStore()
	checker := &memChecker{}
	registry := NewService(store, checker)
	ctx := context.Background()

	evaluator := primitive.NewObjectID()
	project := primitive.NewObjectID()
	template := primitive.NewObjectID()
	companies := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}

	created, err := registry.Assign(ctx, evaluator, project, template, companies, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	// Re-running the same bulk request is a no-op, not an error.
	created, err = registry.Assign(ctx, evaluator, project, template, companies, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	// A partially-overlapping batch only creates the new pair.
	extra := append(companies[:2:2], primitive.NewObjectID())
	created, err = registry.Assign(ctx, evaluator, project, template, extra, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	total, err := registry.CountByProject(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestAssignRejectsEmptyBatch(t *testing.T) {
	registry := NewService(newMemStore(), &memChecker{})

	_, err := registry.Assign(context.Background(),
		primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidAssignment)
}

func TestAssignKeepsDeadline(t *testing.T) {
	store := newMemStore()
	registry := NewService(store, &memChecker{})
	ctx := context.Background()

	evaluator := primitive.NewObjectID()
	project := primitive.NewObjectID()
	company := primitive.NewObjectID()
	deadline := time.Now().Add(72 * time.Hour)

	_, err := registry.Assign(ctx, evaluator, project, primitive.NewObjectID(),
		[]primitive.ObjectID{company}, &deadline)
	require.NoError(t, err)

	assignment, err := registry.Get(ctx, evaluator, company, project)
	require.NoError(t, err)
	require.NotNil(t, assignment.Deadline)
	assert.True(t, assignment.Deadline.Equal(deadline))
}

func TestIsAssigned(t *testing.T) {
	registry := NewService(newMemStore(), &memChecker{})
	ctx := context.Background()

	evaluator := primitive.NewObjectID()
	project := primitive.NewObjectID()
	company := primitive.NewObjectID()

	ok, err := registry.IsAssigned(ctx, evaluator, company, project)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = registry.Assign(ctx, evaluator, project, primitive.NewObjectID(),
		[]primitive.ObjectID{company}, nil)
	require.NoError(t, err)

	ok, err = registry.IsAssigned(ctx, evaluator, company, project)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRevokeBeforeSubmission(t *testing.T) {
	registry := NewService(newMemStore(), &memChecker{})
	ctx := context.Background()

	evaluator := primitive.NewObjectID()
	project := primitive.NewObjectID()
	company := primitive.NewObjectID()

	_, err := registry.Assign(ctx, evaluator, project, primitive.NewObjectID(),
		[]primitive.ObjectID{company}, nil)
	require.NoError(t, err)

	require.NoError(t, registry.Revoke(ctx, evaluator, company, project))

	ok, err := registry.IsAssigned(ctx, evaluator, company, project)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokeAfterSubmissionFails(t *testing.T) {
	checker := &memChecker{}
	registry := NewService(newMemStore(), checker)
	ctx := context.Background()

	evaluator := primitive.NewObjectID()
	project := primitive.NewObjectID()
	company := primitive.NewObjectID()

	_, err := registry.Assign(ctx, evaluator, project, primitive.NewObjectID(),
		[]primitive.ObjectID{company}, nil)
	require.NoError(t, err)

	checker.mark(evaluator, company, project)

	err = registry.Revoke(ctx, evaluator, company, project)
	assert.ErrorIs(t, err, ErrAssignmentHasSubmission)

	// The assignment survives the refused revoke.
	ok, err := registry.IsAssigned(ctx, evaluator, company, project)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRevokeMissingAssignment(t *testing.T) {
	registry := NewService(newMemStore(), &memChecker{})

	err := registry.Revoke(context.Background(),
		primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestListByEvaluator(t *testing.T) {
	registry := NewService(newMemStore(), &memChecker{})
	ctx := context.Background()

	evaluator := primitive.NewObjectID()
	project := primitive.NewObjectID()
	companies := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	_, err := registry.Assign(ctx, evaluator, project, primitive.NewObjectID(), companies, nil)
	require.NoError(t, err)

	mine, err := registry.ListByEvaluator(ctx, evaluator)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	other, err := registry.ListByEvaluator(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, other)
}
