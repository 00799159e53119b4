// Tracks run-wide admission statistics: per-archetype emitted, admitted and
// denied packets, denial reasons, and the blocked-source count.

package sim

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
)

// Metrics aggregates statistics about the run for final reporting.
// Plain counters feed Print and the run summary; the same values are
// mirrored into a private Prometheus registry for textfile export.
type Metrics struct {
	Emitted        map[eventlog.AttackType]int // packets offered to the firewall
	Admitted       map[eventlog.AttackType]int // packets appended to the log
	Denied         map[eventlog.AttackType]int // packets dropped by the firewall
	AdmittedBytes  map[eventlog.AttackType]int
	DeniedByReason map[string]int
	BlockedSources int
	EndClock       int64 // clock when the run stopped (in ticks)

	registry     *prometheus.Registry
	packetsTotal *prometheus.CounterVec
	bytesTotal   *prometheus.CounterVec
	denialsTotal *prometheus.CounterVec
	blockedGauge prometheus.Gauge
	clockGauge   prometheus.Gauge
}

// NewMetrics creates empty metrics backed by a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Emitted:        make(map[eventlog.AttackType]int),
		Admitted:       make(map[eventlog.AttackType]int),
		Denied:         make(map[eventlog.AttackType]int),
		AdmittedBytes:  make(map[eventlog.AttackType]int),
		DeniedByReason: make(map[string]int),
		registry:       reg,
	}

	m.packetsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netguard_packets_total",
			Help: "Packets offered to the firewall, by archetype and decision",
		},
		[]string{"attack_type", "decision"},
	)
	m.bytesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netguard_admitted_bytes_total",
			Help: "Bytes of admitted packets, by archetype",
		},
		[]string{"attack_type"},
	)
	m.denialsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netguard_denials_total",
			Help: "Denied packets, by firewall reason",
		},
		[]string{"reason"},
	)
	m.blockedGauge = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "netguard_blocked_sources",
			Help: "Sources permanently blocked by the firewall",
		},
	)
	m.clockGauge = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "netguard_virtual_clock_seconds",
			Help: "Virtual time at which the run stopped",
		},
	)
	return m
}

// Observe records one firewall decision for a packet of the given size.
func (m *Metrics) Observe(attackType eventlog.AttackType, size int, d Decision) {
	m.Emitted[attackType]++
	if d.Allowed {
		m.Admitted[attackType]++
		m.AdmittedBytes[attackType] += size
		m.packetsTotal.WithLabelValues(string(attackType), "admitted").Inc()
		m.bytesTotal.WithLabelValues(string(attackType)).Add(float64(size))
		return
	}
	m.Denied[attackType]++
	m.DeniedByReason[d.Reason]++
	m.packetsTotal.WithLabelValues(string(attackType), "denied").Inc()
	m.denialsTotal.WithLabelValues(d.Reason).Inc()
	if d.Reason != ReasonBlocked {
		// rate-limit and malicious-threshold denials are the block transitions
		m.BlockedSources++
		m.blockedGauge.Inc()
	}
}

// SetEndClock records when the run stopped.
func (m *Metrics) SetEndClock(clock int64) {
	m.EndClock = clock
	m.clockGauge.Set(TicksToSeconds(clock))
}

// WriteTextfile writes the registry in Prometheus text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

// Print displays aggregated metrics at the end of the run.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Simulated Time       : %.3f s\n", TicksToSeconds(m.EndClock))
	total, admitted := 0, 0
	for _, at := range eventlog.AttackTypes {
		total += m.Emitted[at]
		admitted += m.Admitted[at]
	}
	fmt.Fprintf(w, "Packets Emitted      : %d\n", total)
	fmt.Fprintf(w, "Packets Admitted     : %d\n", admitted)
	fmt.Fprintf(w, "Packets Denied       : %d\n", total-admitted)
	fmt.Fprintf(w, "Blocked Sources      : %d\n", m.BlockedSources)
	for _, at := range eventlog.AttackTypes {
		if m.Emitted[at] == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-13s: emitted=%d admitted=%d denied=%d\n", at, m.Emitted[at], m.Admitted[at], m.Denied[at])
	}
}
