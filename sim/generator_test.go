package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
)

type loggedPacket struct {
	source, destination string
	size                int
	attackType          eventlog.AttackType
	clock               int64
}

// recordingLogger admits everything and remembers each call.
type recordingLogger struct {
	packets []loggedPacket
}

func (l *recordingLogger) LogPacket(source, destination string, size int, attackType eventlog.AttackType, clock int64) bool {
	l.packets = append(l.packets, loggedPacket{source, destination, size, attackType, clock})
	return true
}

// mustProfile returns the built-in profile for a known archetype.
func mustProfile(at eventlog.AttackType) Profile {
	p, err := ProfileFor(at)
	if err != nil {
		panic(err)
	}
	return p
}

func runGenerator(t *testing.T, at eventlog.AttackType, profile Profile, horizonSeconds float64) (*Generator, *recordingLogger, *Simulator) {
	t.Helper()
	logger := &recordingLogger{}
	s := NewSimulator(SecondsToTicks(horizonSeconds))
	g := NewGenerator(0, Flow{Archetype: at, Source: "Client1", Destination: "Server"}, profile, rand.New(rand.NewSource(7)), logger)
	g.Start(s)
	s.Run()
	return g, logger, s
}

func TestGenerator_BoundedArchetypesStopAfterMaxTurns(t *testing.T) {
	tests := []struct {
		at    eventlog.AttackType
		turns int
	}{
		{eventlog.PortScan, 1004},
		{eventlog.Exfiltration, 1000},
		{eventlog.BruteForce, 1500},
	}
	for _, tt := range tests {
		t.Run(string(tt.at), func(t *testing.T) {
			// GIVEN a horizon long enough for every turn (max delay 1.5s)
			g, logger, s := runGenerator(t, tt.at, mustProfile(tt.at), 3000)

			// THEN exactly MaxTurns packets are emitted and nothing is left queued
			assert.Len(t, logger.packets, tt.turns)
			assert.Equal(t, tt.turns, g.Turns())
			assert.True(t, g.Done())
			assert.Zero(t, s.Pending(), "a finished generator must not re-schedule")
		})
	}
}

func TestGenerator_SizesAndDelaysStayInRange(t *testing.T) {
	for _, at := range eventlog.AttackTypes {
		t.Run(string(at), func(t *testing.T) {
			p := mustProfile(at)
			_, logger, _ := runGenerator(t, at, p, 300)
			require.NotEmpty(t, logger.packets)

			minGap, maxGap := SecondsToTicks(p.DelayMin), SecondsToTicks(p.DelayMax)
			for i, pkt := range logger.packets {
				assert.GreaterOrEqual(t, pkt.size, p.SizeMin)
				assert.LessOrEqual(t, pkt.size, p.SizeMax)
				assert.Equal(t, at, pkt.attackType)
				assert.Equal(t, "Client1", pkt.source)
				assert.Equal(t, "Server", pkt.destination)
				if i == 0 {
					assert.Zero(t, pkt.clock, "first packet is emitted at start")
					continue
				}
				gap := pkt.clock - logger.packets[i-1].clock
				assert.GreaterOrEqual(t, gap, minGap)
				assert.LessOrEqual(t, gap, maxGap)
			}
		})
	}
}

func TestGenerator_UnboundedRunsThroughInclusiveHorizon(t *testing.T) {
	// GIVEN a benign flow with a fixed 0.5s delay and a 10s horizon
	p := mustProfile(eventlog.Benign)
	p.DelayMin, p.DelayMax = 0.5, 0.5

	g, logger, s := runGenerator(t, eventlog.Benign, p, 10)

	// THEN packets land at 0, 0.5, ..., 10.0 and the 10.5 turn is abandoned
	assert.Equal(t, 21, g.Turns())
	assert.Equal(t, SecondsToTicks(10), logger.packets[len(logger.packets)-1].clock)
	assert.False(t, g.Done())
	assert.Equal(t, 1, s.Pending())
}

func TestGenerator_SameSeedSameSequence(t *testing.T) {
	p := mustProfile(eventlog.DDoS)
	_, a, _ := runGenerator(t, eventlog.DDoS, p, 60)
	_, b, _ := runGenerator(t, eventlog.DDoS, p, 60)
	assert.Equal(t, a.packets, b.packets)
}

func TestGenerator_Name(t *testing.T) {
	g := NewGenerator(3, Flow{Archetype: eventlog.PortScan, Source: "Client2", Destination: "Server"},
		mustProfile(eventlog.PortScan), rand.New(rand.NewSource(1)), &recordingLogger{})
	assert.Equal(t, "flow_3(PortScan Client2->Server)", g.Name())
}

func TestNewGenerator_PanicsOnInvertedBounds(t *testing.T) {
	p := mustProfile(eventlog.Benign)
	p.SizeMin, p.SizeMax = 10, 5
	assert.Panics(t, func() {
		NewGenerator(0, Flow{}, p, rand.New(rand.NewSource(1)), &recordingLogger{})
	})
}

func TestProfileFor(t *testing.T) {
	p, err := ProfileFor(eventlog.PortScan)
	require.NoError(t, err)
	assert.Equal(t, 1004, p.MaxTurns)
	assert.True(t, p.Bounded())

	p, err = ProfileFor(eventlog.Benign)
	require.NoError(t, err)
	assert.False(t, p.Bounded())
	assert.Equal(t, 400, p.SizeMin)
	assert.Equal(t, 1500, p.SizeMax)

	_, err = ProfileFor("Worm")
	assert.Error(t, err)
}
