// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// TicksPerSecond is the clock resolution: one tick is one microsecond.
const TicksPerSecond = 1_000_000

// MaxSeconds is the longest duration a scenario may configure. A clock at
// the horizon plus one maximal delay still fits in an int64 tick count.
const MaxSeconds = float64(math.MaxInt64/TicksPerSecond) / 2

// SecondsToTicks converts simulated seconds to clock ticks, rounding to the
// nearest tick.
func SecondsToTicks(s float64) int64 {
	return int64(math.Round(s * TicksPerSecond))
}

// TicksToSeconds converts clock ticks to simulated seconds.
func TicksToSeconds(t int64) float64 {
	return float64(t) / TicksPerSecond
}

// Simulator is the virtual clock plus the queue of pending process resumptions.
// Exactly one process runs at a time, in (due, insertion) order.
type Simulator struct {
	Clock   int64
	Horizon int64
	// EventQueue holds every pending resumption
	EventQueue EventQueue
	// Resumed counts executed resumptions
	Resumed int64
	seq     int64
}

// NewSimulator creates a simulator that stops once the next resumption
// would be due after horizon (in ticks).
func NewSimulator(horizon int64) *Simulator {
	return &Simulator{
		Clock:      0,
		Horizon:    horizon,
		EventQueue: make(EventQueue, 0),
	}
}

// ScheduleAt enqueues p to be resumed at the given absolute tick.
// Scheduling into the past is a programming error.
func (sim *Simulator) ScheduleAt(tick int64, p Process) {
	if tick < sim.Clock {
		panic(fmt.Sprintf("process %s scheduled at tick %d before clock %d", p.Name(), tick, sim.Clock))
	}
	sim.seq++
	heap.Push(&sim.EventQueue, resumption{due: tick, seqID: sim.seq, proc: p})
}

// ScheduleAfter enqueues p to be resumed delay seconds after the current clock.
// Panics on a negative or non-finite delay.
func (sim *Simulator) ScheduleAfter(delay float64, p Process) {
	if delay < 0 || math.IsNaN(delay) || math.IsInf(delay, 0) {
		panic(fmt.Sprintf("process %s scheduled with invalid delay %v", p.Name(), delay))
	}
	sim.ScheduleAt(sim.Clock+SecondsToTicks(delay), p)
}

// Pending returns the number of queued resumptions.
func (sim *Simulator) Pending() int {
	return len(sim.EventQueue)
}

// Now returns the clock in simulated seconds.
func (sim *Simulator) Now() float64 {
	return TicksToSeconds(sim.Clock)
}

// Run resumes processes until the queue is empty or the next resumption is
// due after the horizon. Resumptions due exactly at the horizon still run.
// Anything left in the queue is abandoned without being resumed.
func (sim *Simulator) Run() {
	for len(sim.EventQueue) > 0 {
		if sim.EventQueue[0].due > sim.Horizon {
			break
		}
		// get the next resumption and advance the clock
		next := heap.Pop(&sim.EventQueue).(resumption)
		sim.Clock = next.due
		sim.Resumed++
		logrus.Tracef("[tick %010d] Resuming %s", sim.Clock, next.proc.Name())
		next.proc.Resume(sim)
	}
	logrus.Infof("[tick %010d] Simulation ended: %d resumptions, %d processes abandoned at horizon",
		sim.Clock, sim.Resumed, len(sim.EventQueue))
}
