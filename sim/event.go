package sim

// Process is a resumable simulation participant. Resume runs one turn at the
// simulator's current clock; the process continues only if it schedules
// itself again before returning.
type Process interface {
	Name() string
	Resume(*Simulator)
}

// resumption is a pending Process wake-up. seqID breaks timestamp ties in
// insertion order so runs are reproducible.
type resumption struct {
	due   int64 // in ticks
	seqID int64
	proc  Process
}

// EventQueue is a min-heap ordered by (due, seqID).
// Implements heap.Interface.
type EventQueue []resumption

func (eq EventQueue) Len() int { return len(eq) }

func (eq EventQueue) Less(i, j int) bool {
	if eq[i].due != eq[j].due {
		return eq[i].due < eq[j].due
	}
	return eq[i].seqID < eq[j].seqID
}

func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(resumption))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}
