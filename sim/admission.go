package sim

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
)

// Denial reasons reported in Decision.Reason.
const (
	ReasonBlocked   = "blocked"
	ReasonRateLimit = "rate-limit"
	ReasonMalicious = "malicious-threshold"
)

// Default firewall parameters.
const (
	DefaultRateLimit          = 100
	DefaultMaliciousThreshold = 500
	DefaultWindowSeconds      = 5.0
)

// FirewallConfig holds the admission thresholds.
type FirewallConfig struct {
	RateLimit          int   // packets admitted per (source, window)
	MaliciousThreshold int   // per-window ceiling for non-Benign packets
	WindowTicks        int64 // window width in ticks
}

// DefaultFirewallConfig returns the 100 / 500 / 5s policy.
func DefaultFirewallConfig() FirewallConfig {
	return FirewallConfig{
		RateLimit:          DefaultRateLimit,
		MaliciousThreshold: DefaultMaliciousThreshold,
		WindowTicks:        SecondsToTicks(DefaultWindowSeconds),
	}
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	Reason  string // empty when allowed
	Window  int64  // window index; -1 if the source was already blocked
	Count   int    // counter value after the increment; 0 if already blocked
}

type windowKey struct {
	source string
	window int64
}

// Firewall is the stateful admission gate. A source moves from clean to
// blocked at most once and never back.
//
// Thread-safety: NOT thread-safe. Monitor serializes access.
type Firewall struct {
	cfg      FirewallConfig
	blocked  map[string]int64 // source -> tick it was blocked
	counters map[windowKey]int
}

// NewFirewall creates a firewall. Panics on non-positive parameters.
func NewFirewall(cfg FirewallConfig) *Firewall {
	if cfg.RateLimit <= 0 || cfg.MaliciousThreshold <= 0 || cfg.WindowTicks <= 0 {
		panic(fmt.Sprintf("invalid firewall config %+v", cfg))
	}
	return &Firewall{
		cfg:      cfg,
		blocked:  make(map[string]int64),
		counters: make(map[windowKey]int),
	}
}

// Config returns the thresholds in effect.
func (fw *Firewall) Config() FirewallConfig {
	return fw.cfg
}

// WindowIndex returns floor(clock / window) for a non-negative clock.
func (fw *Firewall) WindowIndex(clock int64) int64 {
	return clock / fw.cfg.WindowTicks
}

// Decide evaluates one packet. The counter is incremented before the
// threshold checks, so the packet that crosses a threshold is itself denied.
func (fw *Firewall) Decide(source string, attackType eventlog.AttackType, clock int64) Decision {
	if _, ok := fw.blocked[source]; ok {
		return Decision{Allowed: false, Reason: ReasonBlocked, Window: -1}
	}

	key := windowKey{source: source, window: fw.WindowIndex(clock)}
	fw.counters[key]++
	count := fw.counters[key]

	if count > fw.cfg.RateLimit {
		fw.block(source, clock, ReasonRateLimit, count)
		return Decision{Allowed: false, Reason: ReasonRateLimit, Window: key.window, Count: count}
	}
	if attackType != eventlog.Benign && count > fw.cfg.MaliciousThreshold {
		fw.block(source, clock, ReasonMalicious, count)
		return Decision{Allowed: false, Reason: ReasonMalicious, Window: key.window, Count: count}
	}
	return Decision{Allowed: true, Window: key.window, Count: count}
}

func (fw *Firewall) block(source string, clock int64, reason string, count int) {
	fw.blocked[source] = clock
	logrus.Infof("[tick %010d] Blocking source %s (%s, %d packets in window %d)",
		clock, source, reason, count, fw.WindowIndex(clock))
}

// IsBlocked reports whether source has been blocked.
func (fw *Firewall) IsBlocked(source string) bool {
	_, ok := fw.blocked[source]
	return ok
}

// BlockedAt returns the tick at which source was blocked.
func (fw *Firewall) BlockedAt(source string) (int64, bool) {
	t, ok := fw.blocked[source]
	return t, ok
}

// BlockedSources returns the blocked set in sorted order.
func (fw *Firewall) BlockedSources() []string {
	sources := maps.Keys(fw.blocked)
	slices.Sort(sources)
	return sources
}
