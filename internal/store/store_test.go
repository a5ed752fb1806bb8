package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/planforge/planforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndReject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, false))

	info, err := os.Stat(filepath.Join(dir, WorkspaceDir, "plans"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.ErrorIs(t, Init(dir, false), ErrWorkspaceExists)
	assert.NoError(t, Init(dir, true))
}

func TestSaveAndLoadPlan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, false))
	s := Open(dir)

	plan := &types.TaskPlan{
		ID:     "plan-1",
		Goal:   "Research market trends",
		Status: types.PlanPlanning,
		Phases: []types.Phase{
			{ID: 1, Title: "Topic Analysis", Status: types.PhasePending},
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SavePlan(plan))

	got, err := s.LoadPlan("plan-1")
	require.NoError(t, err)
	assert.Equal(t, plan.Goal, got.Goal)
	assert.Equal(t, plan.Status, got.Status)
	require.Len(t, got.Phases, 1)
	assert.Equal(t, "Topic Analysis", got.Phases[0].Title)

	// Overwrite replaces, not appends
	plan.Status = types.PlanCompleted
	require.NoError(t, s.SavePlan(plan))
	got, err = s.LoadPlan("plan-1")
	require.NoError(t, err)
	assert.Equal(t, types.PlanCompleted, got.Status)
}

func TestListPlansNewestFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, false))
	s := Open(dir)

	base := time.Now().UTC()
	for i, id := range []string{"plan-a", "plan-b", "plan-c"} {
		require.NoError(t, s.SavePlan(&types.TaskPlan{
			ID:        id,
			Goal:      "g",
			Status:    types.PlanPlanning,
			Phases:    []types.Phase{{ID: 1, Title: "t"}},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	plans, err := s.ListPlans()
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "plan-c", plans[0].ID)
	assert.Equal(t, "plan-a", plans[2].ID)
}

func TestExtensionsFilteredByTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, false))
	s := Open(dir)

	for _, ext := range []*types.Extension{
		{ID: "ext-1", TargetPlanID: "plan-1", Goal: "g", Type: types.ExtDocumentation, Status: types.ExtStatusApproved},
		{ID: "ext-2", TargetPlanID: "plan-2", Goal: "g", Type: types.ExtTesting, Status: types.ExtStatusPlanning},
	} {
		require.NoError(t, s.SaveExtension(ext))
	}

	exts, err := s.ListExtensions("plan-1")
	require.NoError(t, err)
	require.Len(t, exts, 1)
	assert.Equal(t, "ext-1", exts[0].ID)

	all, err := s.ListExtensions("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := s.LoadExtension("ext-2")
	require.NoError(t, err)
	assert.Equal(t, types.ExtStatusPlanning, got.Status)
}

func TestLoadMissingPlan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, false))
	_, err := Open(dir).LoadPlan("nope")
	assert.Error(t, err)
}
