package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/netguard-sim/netguard-sim/sim/trace"
)

// Scenario wires one validated configuration into a ready-to-run
// simulation: topology, firewall, monitor, and one generator per flow.
type Scenario struct {
	RunID      string
	Config     *ScenarioConfig
	Topology   *Topology
	RNG        *PartitionedRNG
	Sim        *Simulator
	Firewall   *Firewall
	Monitor    *Monitor
	Metrics    *Metrics
	Trace      *trace.SimulationTrace
	Generators []*Generator
}

// NewScenario validates cfg and builds every component. Nothing is
// scheduled unless validation succeeds. All generators start at tick 0 in
// configuration order.
func NewScenario(cfg *ScenarioConfig, traceLevel trace.TraceLevel) (*Scenario, error) {
	if err := cfg.validateFields(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if !trace.IsValidTraceLevel(string(traceLevel)) {
		return nil, fmt.Errorf("unknown trace level %q", traceLevel)
	}
	topo, err := cfg.BuildTopology()
	if err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	s := &Scenario{
		RunID:    uuid.New().String(),
		Config:   cfg,
		Topology: topo,
		RNG:      NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		Sim:      NewSimulator(cfg.HorizonTicks()),
		Firewall: NewFirewall(cfg.FirewallConfig()),
		Metrics:  NewMetrics(),
		Trace:    trace.NewSimulationTrace(trace.TraceConfig{Level: traceLevel}),
	}
	s.Monitor = NewMonitor(s.Firewall, MonitorConfig{
		ClientPrefix: cfg.ClientPrefix,
		Metrics:      s.Metrics,
		Trace:        s.Trace,
	})

	for i, flow := range cfg.RuntimeFlows() {
		profile, err := cfg.ProfileForFlow(i)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: %w", err)
		}
		g := NewGenerator(i, flow, profile, s.RNG.ForFlow(i), s.Monitor)
		s.Generators = append(s.Generators, g)
	}
	for _, g := range s.Generators {
		g.Start(s.Sim)
	}
	return s, nil
}

// Run drives the simulation to the horizon.
func (s *Scenario) Run() {
	fw := s.Firewall.Config()
	logrus.Infof("Starting run %s: seed=%d horizon=%.3fs flows=%d rate_limit=%d malicious_threshold=%d window=%.3fs",
		s.RunID, s.RNG.Key(), s.Config.Horizon, len(s.Generators),
		fw.RateLimit, fw.MaliciousThreshold, TicksToSeconds(fw.WindowTicks))
	s.Sim.Run()
	s.Metrics.SetEndClock(s.Sim.Clock)
	logrus.Infof("Run %s admitted %d records, blocked %d sources", s.RunID, s.Monitor.Len(), len(s.Firewall.BlockedSources()))
}

// Save writes the event log to path.
func (s *Scenario) Save(path string) error {
	return s.Monitor.Save(path)
}
