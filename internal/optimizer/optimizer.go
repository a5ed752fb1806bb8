// Package optimizer runs the two post-assembly passes over a plan:
// parallel-group detection with duration leveling, and resource
// balancing. It only touches ordering and duration metadata; the
// dependency graph itself is never altered.
package optimizer

import (
	"github.com/planforge/planforge/internal/types"
)

// Params are the tunable optimizer constants
type Params struct {
	ExclusiveTools   []string // Tools that serialize the phases using them
	IntensiveMinutes int      // Duration above which a phase is resource-intensive
	IntensiveLoad    int      // Tool+capability count above which a phase is resource-intensive
}

// DefaultParams returns the standard optimizer constants
func DefaultParams() Params {
	return Params{
		ExclusiveTools:   []string{"database-write", "system-deploy", "file-system-modify"},
		IntensiveMinutes: 30,
		IntensiveLoad:    3,
	}
}

// Optimizer reorders and annotates assembled plans
type Optimizer struct {
	params Params
}

// New creates an optimizer with the given constants
func New(params Params) *Optimizer {
	return &Optimizer{params: params}
}

// Optimize applies both passes in place and recomputes the plan's
// total estimated duration to account for detected parallelism.
func (o *Optimizer) Optimize(plan *types.TaskPlan) {
	o.detectParallelGroups(plan.Phases)
	plan.Phases = o.balance(plan.Phases)
	plan.EstimatedMinutes = parallelAdjustedTotal(plan.Phases)
}

// detectParallelGroups groups phases that are pairwise independent
// and free of exclusive-tool contention, then levels every member's
// duration to the group maximum: wall-clock time of a concurrent
// group is bounded by its slowest member.
func (o *Optimizer) detectParallelGroups(phases []types.Phase) {
	reach := dependencyClosure(phases)

	group := 0
	for i := range phases {
		if phases[i].ParallelGroup != 0 {
			continue
		}
		var members []int
		for j := i + 1; j < len(phases); j++ {
			if phases[j].ParallelGroup != 0 {
				continue
			}
			ok := o.parallelizable(reach, &phases[i], &phases[j])
			for _, m := range members {
				if !ok {
					break
				}
				ok = o.parallelizable(reach, &phases[m], &phases[j])
			}
			if ok {
				members = append(members, j)
			}
		}
		if len(members) == 0 {
			continue
		}
		group++
		members = append(members, i)
		maxMinutes := 0
		for _, m := range members {
			if phases[m].EstimatedMinutes > maxMinutes {
				maxMinutes = phases[m].EstimatedMinutes
			}
		}
		for _, m := range members {
			phases[m].ParallelGroup = group
			phases[m].EstimatedMinutes = maxMinutes
		}
	}
}

// parallelizable is the pairwise admission test: no dependency path
// between the two phases in either direction, and not both needing a
// tool from the exclusive set.
func (o *Optimizer) parallelizable(reach map[int]map[int]bool, a, b *types.Phase) bool {
	if reach[a.ID][b.ID] || reach[b.ID][a.ID] {
		return false
	}
	if o.usesExclusiveTool(a) && o.usesExclusiveTool(b) {
		return false
	}
	return true
}

func (o *Optimizer) usesExclusiveTool(p *types.Phase) bool {
	for _, tool := range p.Tools {
		for _, ex := range o.params.ExclusiveTools {
			if tool == ex {
				return true
			}
		}
	}
	return false
}

// dependencyClosure computes transitive reachability: closure[a][b]
// means phase a depends, directly or indirectly, on phase b.
func dependencyClosure(phases []types.Phase) map[int]map[int]bool {
	closure := make(map[int]map[int]bool, len(phases))
	// Phases are listed with dependencies earlier, so one forward
	// pass is enough.
	for i := range phases {
		p := &phases[i]
		set := make(map[int]bool)
		for _, dep := range p.DependsOn {
			set[dep] = true
			for inner := range closure[dep] {
				set[inner] = true
			}
		}
		closure[p.ID] = set
	}
	return closure
}

// isIntensive flags phases whose duration or tool/capability load
// exceeds the configured thresholds
func (o *Optimizer) isIntensive(p *types.Phase) bool {
	return p.EstimatedMinutes > o.params.IntensiveMinutes ||
		len(p.Tools)+len(p.Capabilities) > o.params.IntensiveLoad
}

// balance redistributes resource-intensive phases across the list so
// no single stretch of the timeline is overloaded. The result is a
// valid topological order: a phase is only emitted once all of its
// dependencies have been emitted.
func (o *Optimizer) balance(phases []types.Phase) []types.Phase {
	byID := make(map[int]*types.Phase, len(phases))
	emitted := make(map[int]bool, len(phases))
	for i := range phases {
		byID[phases[i].ID] = &phases[i]
	}

	ready := func() (intensive, light []int) {
		for i := range phases {
			p := &phases[i]
			if emitted[p.ID] {
				continue
			}
			ok := true
			for _, dep := range p.DependsOn {
				if !emitted[dep] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			if o.isIntensive(p) {
				intensive = append(intensive, p.ID)
			} else {
				light = append(light, p.ID)
			}
		}
		return intensive, light
	}

	out := make([]types.Phase, 0, len(phases))
	lastWasIntensive := false
	for len(out) < len(phases) {
		intensive, light := ready()
		var pick int
		switch {
		case len(intensive) == 0 && len(light) == 0:
			// Unsatisfiable dependency; leave the tail in input order
			for i := range phases {
				if !emitted[phases[i].ID] {
					out = append(out, phases[i])
					emitted[phases[i].ID] = true
				}
			}
			return out
		case lastWasIntensive && len(light) > 0:
			pick = light[0]
			lastWasIntensive = false
		case len(intensive) > 0:
			pick = intensive[0]
			lastWasIntensive = true
		default:
			pick = light[0]
			lastWasIntensive = false
		}
		out = append(out, *byID[pick])
		emitted[pick] = true
	}
	return out
}

// parallelAdjustedTotal sums phase durations, counting each parallel
// group once at its (already leveled) maximum
func parallelAdjustedTotal(phases []types.Phase) int {
	total := 0
	counted := make(map[int]bool)
	for i := range phases {
		p := &phases[i]
		if p.ParallelGroup == 0 {
			total += p.EstimatedMinutes
			continue
		}
		if !counted[p.ParallelGroup] {
			counted[p.ParallelGroup] = true
			total += p.EstimatedMinutes
		}
	}
	return total
}
