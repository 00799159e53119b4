package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions     int              `yaml:"total_decisions"`
	AdmittedCount      int              `yaml:"admitted"`
	RejectedCount      int              `yaml:"rejected"`
	RejectionsByReason map[string]int   `yaml:"rejections_by_reason"`
	RejectionsBySource map[string]int   `yaml:"rejections_by_source"`
	FirstRejection     map[string]int64 `yaml:"first_rejection_tick"` // source -> earliest denied tick
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		RejectionsByReason: make(map[string]int),
		RejectionsBySource: make(map[string]int),
		FirstRejection:     make(map[string]int64),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	for _, a := range st.Admissions {
		if a.Admitted {
			summary.AdmittedCount++
			continue
		}
		summary.RejectedCount++
		summary.RejectionsByReason[a.Reason]++
		summary.RejectionsBySource[a.Source]++
		if _, seen := summary.FirstRejection[a.Source]; !seen {
			summary.FirstRejection[a.Source] = a.Clock
		}
	}
	return summary
}
