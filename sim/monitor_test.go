package sim

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
	"github.com/netguard-sim/netguard-sim/sim/trace"
)

func newTestMonitor(cfg FirewallConfig) *Monitor {
	return NewMonitor(NewFirewall(cfg), MonitorConfig{Metrics: NewMetrics()})
}

func TestMonitor_Direction(t *testing.T) {
	m := newTestMonitor(DefaultFirewallConfig())
	assert.Equal(t, eventlog.DirectionOut, m.Direction("Client1"))
	assert.Equal(t, eventlog.DirectionOut, m.Direction("Client"))
	assert.Equal(t, eventlog.DirectionIn, m.Direction("Server"))
	assert.Equal(t, eventlog.DirectionIn, m.Direction("client1"), "prefix match is case-sensitive")

	custom := NewMonitor(NewFirewall(DefaultFirewallConfig()), MonitorConfig{ClientPrefix: "Host"})
	assert.Equal(t, eventlog.DirectionOut, custom.Direction("Host7"))
	assert.Equal(t, eventlog.DirectionIn, custom.Direction("Client1"))
}

func TestMonitor_LogPacketAppendsAdmittedOnly(t *testing.T) {
	// GIVEN a firewall that admits one packet per window
	m := newTestMonitor(FirewallConfig{RateLimit: 1, MaliciousThreshold: 500, WindowTicks: SecondsToTicks(5)})

	// WHEN the same source sends twice
	assert.True(t, m.LogPacket("Client1", "Server", 512, eventlog.Benign, SecondsToTicks(1.25)))
	assert.False(t, m.LogPacket("Client1", "Server", 600, eventlog.Benign, SecondsToTicks(1.5)))

	// THEN only the first is in the log, fully populated
	require.Equal(t, 1, m.Len())
	assert.Equal(t, eventlog.Record{
		Source:      "Client1",
		Destination: "Server",
		PacketSize:  512,
		AttackType:  eventlog.Benign,
		Timestamp:   1.25,
		Direction:   eventlog.DirectionOut,
	}, m.Records()[0])
}

func TestMonitor_RecordsReturnsCopy(t *testing.T) {
	m := newTestMonitor(DefaultFirewallConfig())
	m.LogPacket("Router", "Server", 100, eventlog.DDoS, 0)

	recs := m.Records()
	recs[0].Source = "tampered"
	assert.Equal(t, "Router", m.Records()[0].Source)
}

func TestMonitor_SaveFailureKeepsLogForRetry(t *testing.T) {
	// GIVEN a monitor with two records and an unwritable destination
	m := newTestMonitor(DefaultFirewallConfig())
	m.LogPacket("Client1", "Server", 100, eventlog.Benign, 0)
	m.LogPacket("Client2", "Server", 200, eventlog.DDoS, SecondsToTicks(0.5))

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// WHEN the first save fails
	err := m.Save(filepath.Join(blocker, "logs.csv"))

	// THEN the error is reported and a retry to another path succeeds with everything
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving 2 records")
	assert.Equal(t, 2, m.Len())

	good := filepath.Join(dir, "data", "logs.csv")
	require.NoError(t, m.Save(good))
	got, err := eventlog.ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, m.Records(), got)
}

func TestMonitor_SaveIsRepeatable(t *testing.T) {
	m := newTestMonitor(DefaultFirewallConfig())
	m.LogPacket("Client1", "Server", 1500, eventlog.Exfiltration, SecondsToTicks(3.141592))
	path := filepath.Join(t.TempDir(), "logs.csv")

	require.NoError(t, m.Save(path))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, m.Save(path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Source,Destination,Packet_Size,Attack_Type,Timestamp,Direction\n"+
		"Client1,Server,1500,Exfiltration,3.141592,OUT\n", string(first))
}

func TestMonitor_WriteCSVMatchesSave(t *testing.T) {
	m := newTestMonitor(DefaultFirewallConfig())
	m.LogPacket("Client1", "Server", 10, eventlog.Benign, 0)
	path := filepath.Join(t.TempDir(), "logs.csv")
	require.NoError(t, m.Save(path))

	var buf bytes.Buffer
	require.NoError(t, m.WriteCSV(&buf))
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, onDisk, buf.Bytes())
}

func TestMonitor_MetricsAndTrace(t *testing.T) {
	metrics := NewMetrics()
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	m := NewMonitor(NewFirewall(FirewallConfig{RateLimit: 2, MaliciousThreshold: 500, WindowTicks: SecondsToTicks(5)}),
		MonitorConfig{Metrics: metrics, Trace: st})

	for i := 0; i < 4; i++ {
		m.LogPacket("Client2", "Server", 100, eventlog.DDoS, int64(i))
	}

	// two admitted, one rate-limit (the block), one already-blocked
	assert.Equal(t, 2, metrics.Admitted[eventlog.DDoS])
	assert.Equal(t, 2, metrics.Denied[eventlog.DDoS])
	assert.Equal(t, 200, metrics.AdmittedBytes[eventlog.DDoS])
	assert.Equal(t, 1, metrics.DeniedByReason[ReasonRateLimit])
	assert.Equal(t, 1, metrics.DeniedByReason[ReasonBlocked])
	assert.Equal(t, 1, metrics.BlockedSources)

	assert.Equal(t, 2.0, promtestutil.ToFloat64(metrics.packetsTotal.WithLabelValues("DDoS", "admitted")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(metrics.packetsTotal.WithLabelValues("DDoS", "denied")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.blockedGauge))

	require.Len(t, st.Admissions, 4)
	assert.True(t, st.Admissions[1].Admitted)
	assert.Equal(t, ReasonRateLimit, st.Admissions[2].Reason)
	assert.Equal(t, int64(-1), st.Admissions[3].Window)
}

func TestMonitor_ConcurrentLogPacketAdmitsExactlyRateLimit(t *testing.T) {
	// GIVEN one source hammered from many goroutines within a single window
	m := newTestMonitor(DefaultFirewallConfig())
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m.LogPacket("Client1", "Server", 100, eventlog.Benign, 0)
			}
		}()
	}
	wg.Wait()

	// THEN the decide-and-append unit never over-admits
	assert.Equal(t, DefaultRateLimit, m.Len())
	assert.True(t, m.Firewall().IsBlocked("Client1"))
}
