// Package sim provides the discrete-event engine for netguard-sim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - simulator.go: the virtual clock and the resumption queue (Run loop)
//   - generator.go: the per-flow traffic process and its archetype profile
//   - admission.go: the firewall's per-source window counters and block list
//   - monitor.go: the single mutation point for the admitted-event log
//
// # Architecture
//
// One Simulator owns the clock. Each configured flow becomes a Generator,
// a resumable Process that emits one packet per turn through the Monitor and
// re-schedules itself after a sampled delay. The Monitor passes each packet
// to the shared Firewall and appends admitted packets to the log. Runs are
// reproducible: every generator draws from its own RNG, derived from the
// master seed by PartitionedRNG, and ties on the clock are broken in
// insertion order.
//
// Sub-packages:
//   - sim/eventlog/: the admitted-event record, CSV artifact and Redis hand-off
//   - sim/trace/: per-decision admission trace and its summary
//
// Scenario (scenario.go) wires a validated ScenarioConfig (config.go) into a
// ready-to-run simulation.
package sim
