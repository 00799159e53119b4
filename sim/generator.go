package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
)

// PacketLogger accepts emitted packets. Monitor is the production
// implementation; the return value reports whether the packet was admitted.
type PacketLogger interface {
	LogPacket(source, destination string, size int, attackType eventlog.AttackType, clock int64) bool
}

// Flow is a validated (archetype, source, destination) triple.
type Flow struct {
	Archetype   eventlog.AttackType
	Source      string
	Destination string
}

func (f Flow) String() string {
	return fmt.Sprintf("%s %s->%s", f.Archetype, f.Source, f.Destination)
}

// Generator is the resumable process behind one flow. Each turn it draws a
// packet size, emits one packet at the current clock, then draws a delay and
// re-schedules itself. Bounded archetypes stop after Profile.MaxTurns.
type Generator struct {
	id      int
	flow    Flow
	profile Profile
	rng     *rand.Rand
	logger  PacketLogger
	turns   int
}

// NewGenerator creates a generator. rng must be owned by this generator alone.
func NewGenerator(id int, flow Flow, profile Profile, rng *rand.Rand, logger PacketLogger) *Generator {
	if profile.SizeMax < profile.SizeMin || profile.DelayMax < profile.DelayMin {
		panic(fmt.Sprintf("generator %d: inverted profile bounds %+v", id, profile))
	}
	return &Generator{
		id:      id,
		flow:    flow,
		profile: profile,
		rng:     rng,
		logger:  logger,
	}
}

// Name identifies the generator in logs.
func (g *Generator) Name() string {
	return fmt.Sprintf("flow_%d(%s)", g.id, g.flow)
}

// Flow returns the flow this generator serves.
func (g *Generator) Flow() Flow {
	return g.flow
}

// Turns returns how many packets the generator has emitted.
func (g *Generator) Turns() int {
	return g.turns
}

// Done reports whether a bounded generator has used up its turns.
func (g *Generator) Done() bool {
	return g.profile.Bounded() && g.turns >= g.profile.MaxTurns
}

// Start schedules the first turn at the current clock.
func (g *Generator) Start(sim *Simulator) {
	sim.ScheduleAt(sim.Clock, g)
}

// Resume runs one turn.
func (g *Generator) Resume(sim *Simulator) {
	if g.Done() {
		return
	}
	p := g.profile
	size := p.SizeMin + g.rng.Intn(p.SizeMax-p.SizeMin+1)

	if p.AttackType == eventlog.PortScan {
		logrus.Debugf("[tick %010d] %s probing port %d", sim.Clock, g.Name(), FirstScanPort+g.turns)
	}
	admitted := g.logger.LogPacket(g.flow.Source, g.flow.Destination, size, p.AttackType, sim.Clock)
	g.turns++
	logrus.Tracef("[tick %010d] %s turn %d size=%d admitted=%v", sim.Clock, g.Name(), g.turns, size, admitted)

	if g.Done() {
		logrus.Debugf("[tick %010d] %s finished after %d turns", sim.Clock, g.Name(), g.turns)
		return
	}
	delay := p.DelayMin + g.rng.Float64()*(p.DelayMax-p.DelayMin)
	sim.ScheduleAfter(delay, g)
}
