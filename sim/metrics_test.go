package sim

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()
	m.Observe(eventlog.Benign, 500, Decision{Allowed: true})
	m.Observe(eventlog.Benign, 700, Decision{Allowed: true})
	m.Observe(eventlog.DDoS, 1500, Decision{Reason: ReasonMalicious})
	m.Observe(eventlog.DDoS, 1500, Decision{Reason: ReasonBlocked})

	assert.Equal(t, 2, m.Emitted[eventlog.Benign])
	assert.Equal(t, 1200, m.AdmittedBytes[eventlog.Benign])
	assert.Equal(t, 2, m.Denied[eventlog.DDoS])
	assert.Zero(t, m.AdmittedBytes[eventlog.DDoS], "denied bytes are not counted")
	assert.Equal(t, 1, m.BlockedSources, "only the transition counts as a block")

	assert.Equal(t, 1200.0, promtestutil.ToFloat64(m.bytesTotal.WithLabelValues("Benign")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.denialsTotal.WithLabelValues(ReasonBlocked)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.denialsTotal.WithLabelValues(ReasonMalicious)))
}

func TestMetrics_RegistryIsPrivate(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.Observe(eventlog.Benign, 1, Decision{Allowed: true})
	assert.Equal(t, 0.0, promtestutil.ToFloat64(b.packetsTotal.WithLabelValues("Benign", "admitted")))

	n, err := promtestutil.GatherAndCount(a.registry, "netguard_packets_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Observe(eventlog.PortScan, 100, Decision{Allowed: true})
	m.SetEndClock(SecondsToTicks(12.5))

	path := filepath.Join(t.TempDir(), "netguard.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "netguard_virtual_clock_seconds 12.5")
	assert.Contains(t, string(data), `netguard_admitted_bytes_total{attack_type="PortScan"} 100`)

	err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "netguard.prom"))
	assert.Error(t, err)
}

func TestMetrics_Print(t *testing.T) {
	m := NewMetrics()
	m.Observe(eventlog.Benign, 100, Decision{Allowed: true})
	m.Observe(eventlog.BruteForce, 300, Decision{Reason: ReasonRateLimit})
	m.SetEndClock(SecondsToTicks(1800))

	var buf bytes.Buffer
	m.Print(&buf)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "=== Simulation Metrics ==="))
	assert.Contains(t, out, "Simulated Time       : 1800.000 s")
	assert.Contains(t, out, "Packets Emitted      : 2")
	assert.Contains(t, out, "Packets Admitted     : 1")
	assert.Contains(t, out, "Blocked Sources      : 1")
	assert.Contains(t, out, "BruteForce   : emitted=1 admitted=0 denied=1")
	assert.NotContains(t, out, "DDoS", "archetypes with no traffic are omitted")
}
