package sim

import (
	"fmt"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
)

// Profile fixes how one traffic archetype paces and sizes its packets.
// Sizes are drawn uniformly from [SizeMin, SizeMax] inclusive, delays
// uniformly from [DelayMin, DelayMax) seconds.
type Profile struct {
	AttackType eventlog.AttackType
	SizeMin    int
	SizeMax    int
	DelayMin   float64
	DelayMax   float64
	MaxTurns   int // 0 = unbounded, runs until the horizon
}

// Bounded reports whether the archetype stops after MaxTurns.
func (p Profile) Bounded() bool {
	return p.MaxTurns > 0
}

// PortScan probes ports FirstScanPort..LastScanPort, one per turn.
const (
	FirstScanPort = 20
	LastScanPort  = 1023
)

var profiles = map[eventlog.AttackType]Profile{
	eventlog.Benign:       {AttackType: eventlog.Benign, SizeMin: 400, SizeMax: 1500, DelayMin: 0.2, DelayMax: 0.8},
	eventlog.DDoS:         {AttackType: eventlog.DDoS, SizeMin: 1200, SizeMax: 2000, DelayMin: 0.5, DelayMax: 1.5},
	eventlog.PortScan:     {AttackType: eventlog.PortScan, SizeMin: 100, SizeMax: 300, DelayMin: 0.5, DelayMax: 1.5, MaxTurns: LastScanPort - FirstScanPort + 1},
	eventlog.Exfiltration: {AttackType: eventlog.Exfiltration, SizeMin: 800, SizeMax: 1200, DelayMin: 0.5, DelayMax: 1.5, MaxTurns: 1000},
	eventlog.BruteForce:   {AttackType: eventlog.BruteForce, SizeMin: 200, SizeMax: 400, DelayMin: 0.5, DelayMax: 1.5, MaxTurns: 1500},
}

// ProfileFor returns the built-in profile for an archetype.
func ProfileFor(at eventlog.AttackType) (Profile, error) {
	p, ok := profiles[at]
	if !ok {
		return Profile{}, fmt.Errorf("unknown archetype %q", at)
	}
	return p, nil
}
