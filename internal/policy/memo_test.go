package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hr-console/internal/domain"
	"go.uber.org/zap"
)

type stubUnitRepo struct {
	units []domain.OrgUnit
	err   error
	calls int
}

func (s *stubUnitRepo) ListUnits(ctx context.Context) ([]domain.OrgUnit, error) {
	s.calls++
	return s.units, s.err
}

func TestMemoHierarchyRefresh(t *testing.T) {
	repo := &stubUnitRepo{units: testUnits()}
	m := NewMemoHierarchy(repo, nil, zap.NewNop())

	_, _, err := m.ParentDepartment(3)
	assert.ErrorIs(t, err, domain.ErrNotFound, "empty before first refresh")

	require.NoError(t, m.Refresh(context.Background()))
	parent, ok, err := m.ParentDepartment(3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), parent)

	before := m.Snapshot()
	repo.units = append(repo.units, domain.OrgUnit{ID: 11, Kind: domain.UnitGroup, ParentID: ptr(5)})
	require.NoError(t, m.Refresh(context.Background()))

	groups, err := m.ChildGroups(5)
	require.NoError(t, err)
	assert.Contains(t, groups, int64(11))

	_, err = before.Unit(11)
	assert.ErrorIs(t, err, domain.ErrNotFound, "old snapshot must stay unchanged")
}

func TestMemoHierarchyRefreshErrorKeepsSnapshot(t *testing.T) {
	repo := &stubUnitRepo{units: testUnits()}
	m := NewMemoHierarchy(repo, nil, zap.NewNop())
	require.NoError(t, m.Refresh(context.Background()))

	repo.err = errors.New("db down")
	assert.Error(t, m.Refresh(context.Background()))
	assert.Equal(t, 6, m.Snapshot().Len())
}
