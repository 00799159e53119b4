package sim

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
	"github.com/netguard-sim/netguard-sim/sim/trace"
)

// DefaultClientPrefix marks client-class sources, whose traffic is OUT.
const DefaultClientPrefix = "Client"

// MonitorConfig holds optional Monitor collaborators. Nil Metrics or Trace
// disables that kind of bookkeeping.
type MonitorConfig struct {
	ClientPrefix string // empty means DefaultClientPrefix
	Metrics      *Metrics
	Trace        *trace.SimulationTrace
}

// Monitor is the only path that mutates the event log. Each LogPacket call
// runs the firewall decision and the conditional append as one unit under mu.
type Monitor struct {
	mu           sync.Mutex
	firewall     *Firewall
	clientPrefix string
	metrics      *Metrics
	trace        *trace.SimulationTrace
	records      []eventlog.Record
}

// NewMonitor creates a Monitor gating every packet through fw.
func NewMonitor(fw *Firewall, cfg MonitorConfig) *Monitor {
	prefix := cfg.ClientPrefix
	if prefix == "" {
		prefix = DefaultClientPrefix
	}
	return &Monitor{
		firewall:     fw,
		clientPrefix: prefix,
		metrics:      cfg.Metrics,
		trace:        cfg.Trace,
		records:      make([]eventlog.Record, 0),
	}
}

// Firewall returns the admission gate shared by every generator.
func (m *Monitor) Firewall() *Firewall {
	return m.firewall
}

// Direction derives IN/OUT from the source naming convention.
func (m *Monitor) Direction(source string) eventlog.Direction {
	if strings.HasPrefix(source, m.clientPrefix) {
		return eventlog.DirectionOut
	}
	return eventlog.DirectionIn
}

// LogPacket offers one packet to the firewall and appends it to the log if
// admitted. A denial is a silent drop, not an error.
func (m *Monitor) LogPacket(source, destination string, size int, attackType eventlog.AttackType, clock int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.firewall.Decide(source, attackType, clock)
	if m.metrics != nil {
		m.metrics.Observe(attackType, size, d)
	}
	m.trace.RecordAdmission(trace.AdmissionRecord{
		Source:     source,
		AttackType: string(attackType),
		Clock:      clock,
		Window:     d.Window,
		Count:      d.Count,
		Admitted:   d.Allowed,
		Reason:     d.Reason,
	})
	if !d.Allowed {
		return false
	}

	m.records = append(m.records, eventlog.Record{
		Source:      source,
		Destination: destination,
		PacketSize:  size,
		AttackType:  attackType,
		Timestamp:   TicksToSeconds(clock),
		Direction:   m.Direction(source),
	})
	return true
}

// Len returns the number of admitted records.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Records returns a copy of the log in admission order.
func (m *Monitor) Records() []eventlog.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]eventlog.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Save writes the full log to path. It may be called again, with the same
// or another path, after a failure; the in-memory log is never discarded.
func (m *Monitor) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := eventlog.WriteFile(path, m.records); err != nil {
		return fmt.Errorf("saving %d records: %w", len(m.records), err)
	}
	logrus.Infof("Saved %d records to %s", len(m.records), path)
	return nil
}

// WriteCSV streams the log as CSV to w.
func (m *Monitor) WriteCSV(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return eventlog.Encode(w, m.records)
}
