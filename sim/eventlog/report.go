package eventlog

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// SourceCount is one row of the top-attackers table.
type SourceCount struct {
	Source string
	Count  int
}

// Report summarizes a saved event log: totals, attack breakdown by label,
// and the sources with the most attack records.
type Report struct {
	Total      int
	Attacks    int
	ByType     map[AttackType]int
	Directions map[Direction]int
	TopSources []SourceCount
}

// BuildReport aggregates records. TopSources keeps at most topN entries,
// ordered by count then source name.
func BuildReport(records []Record, topN int) Report {
	r := Report{
		Total:      len(records),
		ByType:     make(map[AttackType]int),
		Directions: make(map[Direction]int),
	}
	bySource := make(map[string]int)
	for _, rec := range records {
		r.ByType[rec.AttackType]++
		r.Directions[rec.Direction]++
		if rec.AttackType == Benign {
			continue
		}
		r.Attacks++
		bySource[rec.Source]++
	}
	for src, n := range bySource {
		r.TopSources = append(r.TopSources, SourceCount{Source: src, Count: n})
	}
	slices.SortFunc(r.TopSources, func(a, b SourceCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Source, b.Source)
	})
	if len(r.TopSources) > topN {
		r.TopSources = r.TopSources[:topN]
	}
	return r
}

// Write renders the report as plain text.
func (r Report) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Packets: %d\n", r.Total)
	fmt.Fprintf(&b, "Total Attacks: %d\n", r.Attacks)
	fmt.Fprintf(&b, "Outbound / Inbound: %d / %d\n", r.Directions[DirectionOut], r.Directions[DirectionIn])
	b.WriteString("\nAttack Breakdown:\n")
	for _, at := range AttackTypes {
		if at == Benign || r.ByType[at] == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-13s %d\n", at, r.ByType[at])
	}
	b.WriteString("\nTop Attack Sources:\n")
	for _, sc := range r.TopSources {
		fmt.Fprintf(&b, "  %-13s %d\n", sc.Source, sc.Count)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
