package engine

import (
	"sort"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// ReasonCount is one line of the no-action breakdown.
type ReasonCount struct {
	Reason string
	Count  int
}

// Summary aggregates a run for reporting.
type Summary struct {
	Counts   map[model.Outcome]int
	Reasons  []ReasonCount
	Assigned int
	Total    int
}

// Summarize counts outcomes and no-action reasons. Reasons are sorted by
// descending count, then by text.
func (rc *RunContext) Summarize() Summary {
	s := Summary{Counts: make(map[model.Outcome]int, len(model.Outcomes))}
	reasons := make(map[string]int)

	for _, d := range rc.decisions {
		s.Counts[d.Outcome]++
		if d.Outcome == model.OutcomeNoAction {
			reasons[d.Reason]++
		}
	}
	s.Total = len(rc.decisions)
	s.Assigned = rc.AssignedCount()

	for reason, n := range reasons {
		s.Reasons = append(s.Reasons, ReasonCount{Reason: reason, Count: n})
	}
	sort.Slice(s.Reasons, func(i, j int) bool {
		if s.Reasons[i].Count != s.Reasons[j].Count {
			return s.Reasons[i].Count > s.Reasons[j].Count
		}
		return s.Reasons[i].Reason < s.Reasons[j].Reason
	})

	return s
}
