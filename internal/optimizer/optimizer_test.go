package optimizer

import (
	"testing"

	"github.com/planforge/planforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planWith(phases ...types.Phase) *types.TaskPlan {
	return &types.TaskPlan{
		ID:     "plan-1",
		Goal:   "test goal",
		Status: types.PlanPlanning,
		Phases: phases,
	}
}

func TestParallelGroupLeveling(t *testing.T) {
	o := New(DefaultParams())
	plan := planWith(
		types.Phase{ID: 1, Title: "Gather A", EstimatedMinutes: 20},
		types.Phase{ID: 2, Title: "Gather B", EstimatedMinutes: 50},
		types.Phase{ID: 3, Title: "Merge", EstimatedMinutes: 30, DependsOn: []int{1, 2}},
	)

	o.Optimize(plan)

	a := plan.PhaseByID(1)
	b := plan.PhaseByID(2)
	merge := plan.PhaseByID(3)

	require.NotZero(t, a.ParallelGroup)
	assert.Equal(t, a.ParallelGroup, b.ParallelGroup)
	assert.Zero(t, merge.ParallelGroup, "a dependent phase cannot join the group")

	// Both members leveled to the pre-optimization group maximum
	assert.Equal(t, 50, a.EstimatedMinutes)
	assert.Equal(t, 50, b.EstimatedMinutes)

	// Total counts the group once at its maximum
	assert.Equal(t, 80, plan.EstimatedMinutes)
}

func TestDependentPhasesNeverGrouped(t *testing.T) {
	o := New(DefaultParams())
	plan := planWith(
		types.Phase{ID: 1, Title: "First", EstimatedMinutes: 10},
		types.Phase{ID: 2, Title: "Second", EstimatedMinutes: 10, DependsOn: []int{1}},
		types.Phase{ID: 3, Title: "Third", EstimatedMinutes: 10, DependsOn: []int{2}},
	)

	o.Optimize(plan)

	for _, p := range plan.Phases {
		assert.Zero(t, p.ParallelGroup, "linear chain must not form groups")
	}
	// Indirect dependency also blocks grouping: 3 depends on 1 via 2
	assert.Equal(t, 30, plan.EstimatedMinutes)
}

func TestExclusiveToolContentionBlocksGrouping(t *testing.T) {
	o := New(DefaultParams())
	plan := planWith(
		types.Phase{ID: 1, Title: "Load", EstimatedMinutes: 20, Tools: []string{"database-write"}},
		types.Phase{ID: 2, Title: "Deploy", EstimatedMinutes: 20, Tools: []string{"system-deploy"}},
	)

	o.Optimize(plan)

	assert.Zero(t, plan.PhaseByID(1).ParallelGroup)
	assert.Zero(t, plan.PhaseByID(2).ParallelGroup)
	assert.Equal(t, 40, plan.EstimatedMinutes)
}

func TestNonExclusiveToolsMayGroup(t *testing.T) {
	o := New(DefaultParams())
	plan := planWith(
		types.Phase{ID: 1, Title: "Search", EstimatedMinutes: 20, Tools: []string{"web-search"}},
		types.Phase{ID: 2, Title: "Read", EstimatedMinutes: 25, Tools: []string{"document-reader"}},
	)

	o.Optimize(plan)

	assert.NotZero(t, plan.PhaseByID(1).ParallelGroup)
	assert.Equal(t, plan.PhaseByID(1).ParallelGroup, plan.PhaseByID(2).ParallelGroup)
	assert.Equal(t, 25, plan.EstimatedMinutes)
}

func TestBalancePreservesDependencyOrder(t *testing.T) {
	o := New(DefaultParams())
	plan := planWith(
		types.Phase{ID: 1, Title: "Heavy A", EstimatedMinutes: 120, DependsOn: nil},
		types.Phase{ID: 2, Title: "Heavy B", EstimatedMinutes: 90, DependsOn: []int{1}},
		types.Phase{ID: 3, Title: "Light A", EstimatedMinutes: 10, DependsOn: []int{1}},
		types.Phase{ID: 4, Title: "Light B", EstimatedMinutes: 5, DependsOn: nil},
		types.Phase{ID: 5, Title: "Wrap", EstimatedMinutes: 10, DependsOn: []int{2, 3}},
	)

	o.Optimize(plan)

	// Whatever the new ordering, dependencies appear before dependents
	seen := map[int]bool{}
	for _, p := range plan.Phases {
		for _, dep := range p.DependsOn {
			assert.True(t, seen[dep], "phase %d listed before its dependency %d", p.ID, dep)
		}
		seen[p.ID] = true
	}
	assert.Len(t, plan.Phases, 5)
	assert.NoError(t, plan.Validate())
}

func TestIsIntensive(t *testing.T) {
	o := New(DefaultParams())

	long := types.Phase{EstimatedMinutes: 45}
	assert.True(t, o.isIntensive(&long))

	loaded := types.Phase{EstimatedMinutes: 10, Tools: []string{"a", "b"}, Capabilities: []string{"c", "d"}}
	assert.True(t, o.isIntensive(&loaded))

	light := types.Phase{EstimatedMinutes: 10, Tools: []string{"a"}}
	assert.False(t, o.isIntensive(&light))
}
