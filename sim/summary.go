package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
	"github.com/netguard-sim/netguard-sim/sim/trace"
)

// ArchetypeSummary counts packets for one archetype.
type ArchetypeSummary struct {
	Emitted       int `yaml:"emitted"`
	Admitted      int `yaml:"admitted"`
	Denied        int `yaml:"denied"`
	AdmittedBytes int `yaml:"admitted_bytes"`
}

// FlowSummary reports how far one generator got.
type FlowSummary struct {
	Flow  string `yaml:"flow"`
	Turns int    `yaml:"turns"`
	Done  bool   `yaml:"done"`
}

// BlockedSource records when a source was blocked.
type BlockedSource struct {
	Source    string  `yaml:"source"`
	AtSeconds float64 `yaml:"at_seconds"`
}

// RunSummary is the end-of-run report written next to the event log.
type RunSummary struct {
	RunID           string                      `yaml:"run_id"`
	Seed            int64                       `yaml:"seed"`
	HorizonSeconds  float64                     `yaml:"horizon_seconds"`
	EndSeconds      float64                     `yaml:"end_seconds"`
	Flows           []FlowSummary               `yaml:"flows"`
	Resumptions     int64                       `yaml:"resumptions"`
	Records         int                         `yaml:"records"`
	Archetypes      map[string]ArchetypeSummary `yaml:"archetypes"`
	DenialsByReason map[string]int              `yaml:"denials_by_reason"`
	BlockedSources  []BlockedSource             `yaml:"blocked_sources"`
	Trace           *trace.TraceSummary         `yaml:"trace,omitempty"`
}

// Summary builds the run summary from the current state.
func (s *Scenario) Summary() *RunSummary {
	sum := &RunSummary{
		RunID:           s.RunID,
		Seed:            int64(s.RNG.Key()),
		HorizonSeconds:  s.Config.Horizon,
		EndSeconds:      s.Sim.Now(),
		Flows:           make([]FlowSummary, 0, len(s.Generators)),
		Resumptions:     s.Sim.Resumed,
		Records:         s.Monitor.Len(),
		Archetypes:      make(map[string]ArchetypeSummary),
		DenialsByReason: make(map[string]int),
		BlockedSources:  make([]BlockedSource, 0),
	}
	for _, g := range s.Generators {
		sum.Flows = append(sum.Flows, FlowSummary{Flow: g.Flow().String(), Turns: g.Turns(), Done: g.Done()})
	}
	for _, at := range eventlog.AttackTypes {
		if s.Metrics.Emitted[at] == 0 {
			continue
		}
		sum.Archetypes[string(at)] = ArchetypeSummary{
			Emitted:       s.Metrics.Emitted[at],
			Admitted:      s.Metrics.Admitted[at],
			Denied:        s.Metrics.Denied[at],
			AdmittedBytes: s.Metrics.AdmittedBytes[at],
		}
	}
	for reason, n := range s.Metrics.DeniedByReason {
		sum.DenialsByReason[reason] = n
	}
	for _, src := range s.Firewall.BlockedSources() {
		at, _ := s.Firewall.BlockedAt(src)
		sum.BlockedSources = append(sum.BlockedSources, BlockedSource{Source: src, AtSeconds: TicksToSeconds(at)})
	}
	if s.Trace.Enabled() {
		sum.Trace = trace.Summarize(s.Trace)
	}
	return sum
}

// WriteSummary writes a run summary as YAML.
func WriteSummary(path string, sum *RunSummary) error {
	data, err := yaml.Marshal(sum)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing summary to %s: %w", path, err)
	}
	return nil
}
